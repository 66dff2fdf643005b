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

// Package correctness flags structural problems that keep generated firmware
// from building at all: missing entry points and unbounded array storage.
package correctness

import (
	"regexp"
	"strings"

	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/basic"
	"naive.systems/firmcheck/cruleslib/options"
)

var unboundedArrayRE = regexp.MustCompile(`char\s+\w+\s*\[\s*\]`)

func Analyze(code string, b *board.Profile, opts *options.CheckOptions) (*results.ResultsList, error) {
	resultsList := &results.ResultsList{}

	if !strings.Contains(code, "void setup()") && !strings.Contains(code, "void setup (") {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Correctness,
			Severity:     results.Critical,
			ErrorMessage: "Missing void setup() function - code won't compile",
			Suggestion:   "Add: void setup() { /* initialization code */ }",
		})
	}

	if !strings.Contains(code, "void loop()") && !strings.Contains(code, "void loop (") {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Correctness,
			Severity:     results.Critical,
			ErrorMessage: "Missing void loop() function - code won't compile",
			Suggestion:   "Add: void loop() { /* main program logic */ }",
		})
	}

	// An array without a declared size has no defined allocation.
	if loc := unboundedArrayRE.FindStringIndex(code); loc != nil {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Correctness,
			Severity:     results.High,
			ErrorMessage: "Unbounded array declaration without size",
			Suggestion:   "Specify array size: char buffer[256];",
			LineNumber:   basic.LineNumberAt(code, loc[0]),
		})
	}

	return resultsList, nil
}
