/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package safety checks for diagnosability and defensive error handling.
package safety

import (
	"strings"

	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/options"
)

// Short sketches get a pass on error handling; only substantial code is
// expected to branch on failure.
const (
	minConditionCount  = 2
	minSubstantialSize = 500
)

func Analyze(code string, b *board.Profile, opts *options.CheckOptions) (*results.ResultsList, error) {
	resultsList := &results.ResultsList{}

	if !strings.Contains(code, "Serial.begin") {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Safety,
			Severity:     results.Low,
			ErrorMessage: "Missing Serial.begin() - debugging will be difficult",
			Suggestion:   "Add Serial.begin(115200); in setup()",
		})
	}

	ifCount := strings.Count(code, "if (")
	if ifCount < minConditionCount && len(code) > minSubstantialSize {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Safety,
			Severity:     results.Medium,
			ErrorMessage: "Limited error checking - code may fail silently",
			Suggestion:   "Add validation: if (sensor.begin()) { /* handle error */ }",
		})
	}

	return resultsList, nil
}
