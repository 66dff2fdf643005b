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

// Package analyzer is the library entry point: it runs every firmware rule
// over a code snippet, estimates memory pressure, scores the result, and
// assembles the aggregate quality report. Calls are pure with respect to
// the filesystem unless the caller configures a results directory, and the
// same input always yields a byte-identical report.
package analyzer

import (
	"fmt"
	"unicode/utf8"

	"naive.systems/firmcheck/analyzer/checkrule"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/options"
	fwanalyzer "naive.systems/firmcheck/firmware_rules/analyzer"
	"naive.systems/firmcheck/memest"
	"naive.systems/firmcheck/report"
	"naive.systems/firmcheck/scoring"
)

// InputError reports a rejected analysis input, as opposed to a failure
// while analyzing.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

// Analyze runs the full pipeline against the default board.
func Analyze(code string) (*report.QualityReport, error) {
	return AnalyzeForBoard(code, board.DefaultBoard)
}

// AnalyzeForBoard runs the full pipeline with every rule enabled. Unknown
// board identifiers fall back to the default board rather than failing.
func AnalyzeForBoard(code string, boardID string) (*report.QualityReport, error) {
	envOpts := options.NewEnvOptions("", "", false, false, 0, "en")
	return AnalyzeWithOptions(code, board.Resolve(boardID), fwanalyzer.DefaultCheckRules(), envOpts)
}

// AnalyzeWithOptions is the configurable variant used by the command line
// driver: callers choose the rule set and the environment.
func AnalyzeWithOptions(code string, b *board.Profile, rules []checkrule.CheckRule, envOpts *options.EnvOptions) (*report.QualityReport, error) {
	if !utf8.ValidString(code) {
		return nil, &InputError{Reason: "code is not valid UTF-8"}
	}

	resultsList, errs := fwanalyzer.Run(rules, code, b, envOpts)
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("run %d rule(s): %v", len(rules), err)
		}
	}

	estimate := memest.Compute(code, b)
	score := scoring.Score(resultsList, b)
	return report.Build(code, resultsList, estimate, score, b), nil
}
