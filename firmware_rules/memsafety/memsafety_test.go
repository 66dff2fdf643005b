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

package memsafety

import (
	"fmt"
	"math"
	"testing"

	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/sdk/testcase"
)

func TestLargeArrayOnRoomyBoard(t *testing.T) {
	code := "void setup() {\n  char buffer[2048];\n}\nvoid loop() {\n}\n"
	tc := testcase.New(t, code, "esp32dev")
	list, err := Analyze(tc.Code, tc.Board, tc.Options)
	tc.ExpectResults([]*results.Result{
		{
			Category:     results.Memory,
			Severity:     results.High,
			ErrorMessage: "Large static array allocation (2048 bytes) detected",
			Suggestion:   "Use dynamic allocation or reduce size. Board has only 520KB RAM",
			LineNumber:   2,
		},
	}, list, err)
}

func TestLargeArrayOnLowRAMBoard(t *testing.T) {
	code := "void setup() {\n  char buffer[2048];\n}\nvoid loop() {\n}\n"
	tc := testcase.New(t, code, "esp32c3")
	list, err := Analyze(tc.Code, tc.Board, tc.Options)
	tc.ExpectResults([]*results.Result{
		{
			Category:     results.Memory,
			Severity:     results.Critical,
			ErrorMessage: "Large static array allocation (2048 bytes) detected",
			Suggestion:   "Use dynamic allocation or reduce size. Board has only 400KB RAM",
			LineNumber:   2,
		},
	}, list, err)
}

func TestArrayAtThreshold(t *testing.T) {
	code := "void setup() {\n  char buffer[1000];\n}\nvoid loop() {\n}\n"
	tc := testcase.New(t, code, "esp32c3")
	tc.ExpectNoResults(Analyze(tc.Code, tc.Board, tc.Options))
}

func TestArraySizeOverflowingInt(t *testing.T) {
	// A digit run too long for an int saturates instead of being skipped.
	code := "void setup() {\n  char buffer[99999999999999999999];\n}\nvoid loop() {\n}\n"
	tc := testcase.New(t, code, "esp32dev")
	list, err := Analyze(tc.Code, tc.Board, tc.Options)
	tc.ExpectResults([]*results.Result{
		{
			Category:     results.Memory,
			Severity:     results.High,
			ErrorMessage: fmt.Sprintf("Large static array allocation (%d bytes) detected", math.MaxInt),
			Suggestion:   "Use dynamic allocation or reduce size. Board has only 520KB RAM",
			LineNumber:   2,
		},
	}, list, err)
}

func TestUnbalancedMalloc(t *testing.T) {
	code := "void setup() {\n  int *p = (int *)malloc(64);\n}\nvoid loop() {\n}\n"
	tc := testcase.New(t, code, "esp32dev")
	list, err := Analyze(tc.Code, tc.Board, tc.Options)
	tc.ExpectResults([]*results.Result{
		{
			Category:     results.Memory,
			Severity:     results.High,
			ErrorMessage: "Potential memory leak: 1 malloc calls but only 0 free calls",
		},
	}, list, err)
}

func TestBalancedMalloc(t *testing.T) {
	code := "void setup() {\n  int *p = (int *)malloc(64);\n  free(p);\n}\nvoid loop() {\n}\n"
	tc := testcase.New(t, code, "esp32dev")
	tc.ExpectNoResults(Analyze(tc.Code, tc.Board, tc.Options))
}

func TestStringLiteralsWithoutFlashMacro(t *testing.T) {
	code := "void loop() {\n" +
		"  Serial.println(\"temperature reading one\");\n" +
		"  Serial.println(\"temperature reading two\");\n" +
		"  Serial.print(\"temperature reading three\");\n" +
		"  Serial.println(\"temperature reading four\");\n" +
		"}\n"
	tc := testcase.New(t, code, "esp32dev")
	list, err := Analyze(tc.Code, tc.Board, tc.Options)
	tc.ExpectResults([]*results.Result{
		{
			Category:     results.Memory,
			Severity:     results.Medium,
			ErrorMessage: "Found 4 string literals without F() macro",
			Suggestion:   `Use F("text") to store strings in flash: Serial.println(F("message"));`,
		},
	}, list, err)
}

func TestFewStringLiteralsTolerated(t *testing.T) {
	code := "void loop() {\n" +
		"  Serial.println(\"temperature reading one\");\n" +
		"  Serial.println(\"temperature reading two\");\n" +
		"}\n"
	tc := testcase.New(t, code, "esp32dev")
	tc.ExpectNoResults(Analyze(tc.Code, tc.Board, tc.Options))
}
