/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2022-2023  Naive Systems Ltd.

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

// Package testcase runs a single rule against an in-memory code snippet and
// asserts on the emitted results. Rule tests construct one TestCase per
// snippet instead of repeating option plumbing.
package testcase

import (
	"encoding/json"
	"testing"

	"naive.systems/firmcheck/analyzer/checkrule"
	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/options"
)

type TestCase struct {
	t       *testing.T
	Code    string
	Board   *board.Profile
	Options *options.CheckOptions
}

func New(t *testing.T, code string, boardID string) TestCase {
	envOpts := options.NewEnvOptions("", "", false, false, 1, "en")
	opts := options.MakeCheckOptions(&checkrule.JSONOption{}, envOpts, options.NewRuleSpecificOptions("test", ""))
	return TestCase{t, code, board.Resolve(boardID), &opts}
}

// expectedEquals compares the fields a rule controls. Ruleset, rule id and
// result ids are assigned later in the pipeline and are ignored here.
func (tc *TestCase) expectedEquals(expected []*results.Result, actual *results.ResultsList) bool {
	if len(expected) != len(actual.Results) {
		return false
	}
	for i, want := range expected {
		got := actual.Results[i]
		if got.Category != want.Category ||
			got.Severity != want.Severity ||
			got.LineNumber != want.LineNumber ||
			got.ErrorMessage != want.ErrorMessage {
			return false
		}
		if want.Suggestion != "" && got.Suggestion != want.Suggestion {
			return false
		}
	}
	return true
}

func (tc *TestCase) dumpResults(list *results.ResultsList) {
	bytes, err := json.MarshalIndent(list, "", "  ")
	if err == nil {
		tc.t.Log(string(bytes))
	} else {
		tc.t.Errorf("json.MarshalIndent: %v", err)
	}
}

func (tc *TestCase) ExpectResults(expected []*results.Result, actual *results.ResultsList, err error) {
	if err != nil {
		tc.t.Fatalf("checker returned error: %v", err)
	}
	if !tc.expectedEquals(expected, actual) {
		tc.dumpResults(actual)
		tc.t.Fatalf("checker results do not match: want %d result(s), got %d", len(expected), len(actual.Results))
	}
}

func (tc *TestCase) ExpectNoResults(actual *results.ResultsList, err error) {
	if err != nil {
		tc.t.Fatalf("checker returned error: %v", err)
	}
	if len(actual.Results) != 0 {
		tc.dumpResults(actual)
		tc.t.Fatal("checker is expected to report nothing")
	}
}

func (tc *TestCase) ExpectError(_ *results.ResultsList, err error) {
	if err == nil {
		tc.t.Fatal("checker is expected to return an error")
	}
	tc.t.Logf("checker returned error: %v", err)
}
