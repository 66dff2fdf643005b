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

package analyzer

import (
	"reflect"
	"testing"

	"naive.systems/firmcheck/analyzer/checkrule"
	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/options"
)

func testEnvOptions() *options.EnvOptions {
	return options.NewEnvOptions("", "", false, false, 4, "en")
}

func TestRunCollectsInRuleOrder(t *testing.T) {
	code := "void loop() {\n  delay(10000);\n}\n"
	b := board.Resolve("esp32dev")

	allResults, errs := Run(DefaultCheckRules(), code, b, testEnvOptions())
	for _, err := range errs {
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	type key struct {
		category results.Category
		severity results.Severity
		ruleId   string
	}
	var got []key
	for _, r := range allResults.Results {
		if r.Ruleset != "firmware" {
			t.Errorf("result has ruleset %q, want firmware", r.Ruleset)
		}
		got = append(got, key{r.Category, r.Severity, r.RuleId})
	}
	want := []key{
		{results.Correctness, results.Critical, "correctness"},
		{results.Performance, results.High, "performance"},
		{results.Safety, results.Low, "safety"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run results = %v, want %v", got, want)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	code := "void loop() {\n  char big[4096];\n  delay(10000);\n  int *p = (int *)malloc(64);\n}\n"
	b := board.Resolve("esp32c3")

	first, _ := Run(DefaultCheckRules(), code, b, testEnvOptions())
	for i := 0; i < 10; i++ {
		again, _ := Run(DefaultCheckRules(), code, b, testEnvOptions())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestRunAppliesSeverityOverride(t *testing.T) {
	code := "void setup() {\n}\nvoid loop() {\n}\n"
	b := board.Resolve("esp32dev")

	rule, err := checkrule.MakeCheckRule("firmware/safety", `{"severity": "high"}`)
	if err != nil {
		t.Fatalf("MakeCheckRule: %v", err)
	}
	allResults, errs := Run([]checkrule.CheckRule{*rule}, code, b, testEnvOptions())
	if errs[0] != nil {
		t.Fatalf("Run: %v", errs[0])
	}
	if len(allResults.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(allResults.Results))
	}
	if allResults.Results[0].Severity != results.High {
		t.Errorf("severity = %v, want high", allResults.Results[0].Severity)
	}
}

func TestRunCapsMaxReportNum(t *testing.T) {
	code := "int main() {\n  return 0;\n}\n"
	b := board.Resolve("esp32dev")

	rule, err := checkrule.MakeCheckRule("firmware/correctness", `{"max-report-num": 1}`)
	if err != nil {
		t.Fatalf("MakeCheckRule: %v", err)
	}
	allResults, errs := Run([]checkrule.CheckRule{*rule}, code, b, testEnvOptions())
	if errs[0] != nil {
		t.Fatalf("Run: %v", errs[0])
	}
	if len(allResults.Results) != 1 {
		t.Errorf("got %d results, want 1 after cap", len(allResults.Results))
	}
}

func TestRunHonorsRulePinnedBoard(t *testing.T) {
	code := "void setup() {\n  char big[4096];\n}\nvoid loop() {\n}\n"
	b := board.Resolve("esp32dev")

	rule, err := checkrule.MakeCheckRule("firmware/memsafety", `{"board": "esp32c3"}`)
	if err != nil {
		t.Fatalf("MakeCheckRule: %v", err)
	}
	allResults, errs := Run([]checkrule.CheckRule{*rule}, code, b, testEnvOptions())
	if errs[0] != nil {
		t.Fatalf("Run: %v", errs[0])
	}
	if len(allResults.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(allResults.Results))
	}
	if allResults.Results[0].Severity != results.Critical {
		t.Errorf("severity = %v, want critical on pinned low-RAM board", allResults.Results[0].Severity)
	}
}
