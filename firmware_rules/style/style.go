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

// Package style checks maintainability signals: const usage, comment
// density, and decomposition into helper functions.
package style

import (
	"regexp"
	"strings"

	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/options"
)

var functionDefRE = regexp.MustCompile(`(?:void|int|float|bool|uint\d+_t)\s+\w+\s*\([^)]*\)\s*\{`)

const (
	minConstSize        = 200
	minCommentRatio     = 0.05
	minCommentableLines = 30
	maxMonolithFuncs    = 2
	minDecomposeLines   = 50
)

func Analyze(code string, b *board.Profile, opts *options.CheckOptions) (*results.ResultsList, error) {
	resultsList := &results.ResultsList{}

	if !strings.Contains(code, "const") && len(code) > minConstSize {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Style,
			Severity:     results.Low,
			ErrorMessage: "No const declarations found",
			Suggestion:   "Use const for constants: const int LED_PIN = 2;",
		})
	}

	// Split never returns an empty slice, so the denominator is safe.
	lines := strings.Split(code, "\n")
	commentCount := strings.Count(code, "//") + strings.Count(code, "/*")
	commentRatio := float64(commentCount) / float64(len(lines))
	if commentRatio < minCommentRatio && len(lines) > minCommentableLines {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Style,
			Severity:     results.Low,
			ErrorMessage: "Low comment density (<5%)",
			Suggestion:   "Add comments to explain complex logic",
		})
	}

	// setup() and loop() alone count as two definitions, so a longer file
	// with no helpers trips this.
	functionCount := len(functionDefRE.FindAllStringIndex(code, -1))
	if functionCount <= maxMonolithFuncs && len(lines) > minDecomposeLines {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Style,
			Severity:     results.Medium,
			ErrorMessage: "All code in setup/loop - no helper functions",
			Suggestion:   "Break complex logic into reusable functions",
		})
	}

	return resultsList, nil
}
