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

package analyzerinterface

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"naive.systems/firmcheck/analyzer/checkrule"
	"naive.systems/firmcheck/analyzer/results"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListSourceFiles(t *testing.T) {
	srcdir := t.TempDir()
	writeFile(t, filepath.Join(srcdir, "main.ino"), "void setup() {}\n")
	writeFile(t, filepath.Join(srcdir, "util.cpp"), "int f() { return 0; }\n")
	writeFile(t, filepath.Join(srcdir, "util.h"), "int f();\n")
	writeFile(t, filepath.Join(srcdir, "README.md"), "docs\n")
	writeFile(t, filepath.Join(srcdir, "build", "gen.cpp"), "int g() { return 0; }\n")

	files, err := ListSourceFiles(srcdir, []string{"**/build/**"})
	if err != nil {
		t.Fatalf("ListSourceFiles: %v", err)
	}
	want := []string{
		filepath.Join(srcdir, "main.ino"),
		filepath.Join(srcdir, "util.cpp"),
		filepath.Join(srcdir, "util.h"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ListSourceFiles = %v, want %v", files, want)
	}
}

func TestReadCheckRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check_rules")
	content := "firmware/correctness\n" +
		"# disabled for now: firmware/style\n" +
		"\n" +
		`firmware/memsafety {"severity": "critical"}` + "\n"
	writeFile(t, path, content)

	rules, err := ReadCheckRules(path)
	if err != nil {
		t.Fatalf("ReadCheckRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Name != "firmware/correctness" {
		t.Errorf("rules[0].Name = %q", rules[0].Name)
	}
	if rules[1].Name != "firmware/memsafety" {
		t.Errorf("rules[1].Name = %q", rules[1].Name)
	}
	if rules[1].JSONOptions.Severity == nil || *rules[1].JSONOptions.Severity != "critical" {
		t.Error("rules[1] severity option not parsed")
	}
}

func TestReadCheckRulesRejectsBadSeverity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check_rules")
	writeFile(t, path, `firmware/safety {"severity": "urgent"}`+"\n")
	if _, err := ReadCheckRules(path); err == nil {
		t.Error("expected error for invalid severity")
	}
}

func TestFilterCheckRules(t *testing.T) {
	rules := []checkrule.CheckRule{
		*checkrule.MakeCheckRuleWithoutError("firmware/safety", "{}"),
		*checkrule.MakeCheckRuleWithoutError("firmware/style", "{}"),
	}
	filtered := FilterCheckRules(rules, "firmware/sa")
	if len(filtered) != 1 || filtered[0].Name != "firmware/safety" {
		t.Errorf("FilterCheckRules = %v", filtered)
	}
}

func TestAddID(t *testing.T) {
	list := &results.ResultsList{Results: []*results.Result{
		{ErrorMessage: "a"},
		{ErrorMessage: "b"},
	}}
	AddID(list)
	if list.Results[0].Id == "" || list.Results[1].Id == "" {
		t.Error("AddID left an empty id")
	}
	if list.Results[0].Id == list.Results[1].Id {
		t.Error("AddID assigned duplicate ids")
	}
}
