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
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"reflect"
	"sync"
	"syscall"
	"testing"
	"time"

	"naive.systems/firmcheck/analyzer/results"
)

func TestMissingEntryPoints(t *testing.T) {
	code := "int main() {\n  return 0;\n}\n"
	r, err := AnalyzeForBoard(code, "esp32dev")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if r.CriticalCount != 2 {
		t.Errorf("CriticalCount = %d, want 2", r.CriticalCount)
	}
	for _, issue := range r.IssuesBySeverity.Critical {
		if issue.Category != results.Correctness {
			t.Errorf("critical issue category = %v, want correctness", issue.Category)
		}
	}
	if r.QualityScore > 60 {
		t.Errorf("QualityScore = %d, want <= 60", r.QualityScore)
	}
	if r.Severity != "critical" {
		t.Errorf("Severity = %q, want critical", r.Severity)
	}
}

func TestLargeArraySeverityDependsOnBoard(t *testing.T) {
	code := "void setup() {\n  char buffer[2000];\n}\nvoid loop() {\n}\n"

	r, err := AnalyzeForBoard(code, "esp32c3")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if len(r.IssuesByType.Memory) != 1 || r.IssuesByType.Memory[0].Severity != results.Critical {
		t.Errorf("expected one critical memory issue on 400KB board, got %+v", r.IssuesByType.Memory)
	}

	r, err = AnalyzeForBoard(code, "esp32s3")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if len(r.IssuesByType.Memory) != 1 || r.IssuesByType.Memory[0].Severity != results.High {
		t.Errorf("expected one high memory issue on 1507KB board, got %+v", r.IssuesByType.Memory)
	}
}

func TestLongDelaySeverityDependsOnRealtime(t *testing.T) {
	code := "void setup() {\n}\nvoid loop() {\n  delay(15000);\n}\n"

	r, err := AnalyzeForBoard(code, "esp32c3")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if len(r.IssuesByType.Performance) != 1 || r.IssuesByType.Performance[0].Severity != results.Critical {
		t.Errorf("expected critical performance issue on realtime board, got %+v", r.IssuesByType.Performance)
	}

	r, err = AnalyzeForBoard(code, "esp32dev")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if len(r.IssuesByType.Performance) != 1 || r.IssuesByType.Performance[0].Severity != results.High {
		t.Errorf("expected high performance issue on non-realtime board, got %+v", r.IssuesByType.Performance)
	}
}

func TestMinimalHealthySketch(t *testing.T) {
	code := "const int LED_PIN = 2;\nvoid setup() {\n  Serial.begin(115200);\n}\nvoid loop() {\n}\n"
	r, err := AnalyzeForBoard(code, "esp32dev")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if r.Severity != "low" && r.Severity != "excellent" {
		t.Errorf("Severity = %q, want low or excellent", r.Severity)
	}
	if r.QualityScore < 75 {
		t.Errorf("QualityScore = %d, want >= 75", r.QualityScore)
	}
}

func TestUnknownBoardFallsBack(t *testing.T) {
	code := "void loop() {\n  delay(15000);\n  char big[4096];\n}\n"
	unknown, err := AnalyzeForBoard(code, "attiny85")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	known, err := AnalyzeForBoard(code, "esp32dev")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if !reflect.DeepEqual(unknown, known) {
		t.Error("unknown board should produce the default board's report")
	}
}

func TestAnalyzeRejectsInvalidUTF8(t *testing.T) {
	_, err := Analyze("void setup() {}\xff")
	if err == nil {
		t.Fatal("expected error for invalid UTF-8 input")
	}
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Errorf("error type = %T, want *InputError", err)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	code := "void loop() {\n  char big[4096];\n  delay(10000);\n  int *p = (int *)malloc(64);\n}\n"
	first, err := AnalyzeForBoard(code, "esp32c3")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	firstBytes, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := AnalyzeForBoard(code, "esp32c3")
		if err != nil {
			t.Fatalf("AnalyzeForBoard: %v", err)
		}
		againBytes, err := json.Marshal(again)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		if string(firstBytes) != string(againBytes) {
			t.Fatalf("run %d produced a different report", i)
		}
	}
}

func TestConcurrentAnalyses(t *testing.T) {
	codes := []string{
		"void loop() {\n}\n",
		"void setup() {\n  char big[4096];\n}\nvoid loop() {\n}\n",
		"void setup() {\n}\nvoid loop() {\n  delay(15000);\n}\n",
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for _, code := range codes {
			wg.Add(1)
			go func(code string) {
				defer wg.Done()
				r, err := AnalyzeForBoard(code, "esp32dev")
				if err != nil {
					t.Errorf("AnalyzeForBoard: %v", err)
					return
				}
				if r.QualityScore < 0 || r.QualityScore > 100 {
					t.Errorf("QualityScore = %d out of range", r.QualityScore)
				}
			}(code)
		}
	}
	wg.Wait()
}

// The SIGINT registration of the rule runner must not outlive the analysis:
// a leaked registration would swallow SIGINT for the whole embedding process.
// A child process re-runs this test, analyzes once, then signals itself; it
// must still die by SIGINT instead of reaching os.Exit(42).
func TestSigintTerminatesProcessAfterAnalyze(t *testing.T) {
	if os.Getenv("FC_ANALYZE_THEN_SIGINT") == "1" {
		if _, err := AnalyzeForBoard("void setup() {\n}\nvoid loop() {\n}\n", "esp32dev"); err != nil {
			os.Exit(1)
		}
		if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
			os.Exit(1)
		}
		time.Sleep(2 * time.Second)
		os.Exit(42)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestSigintTerminatesProcessAfterAnalyze")
	cmd.Env = append(os.Environ(), "FC_ANALYZE_THEN_SIGINT=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("child survived SIGINT after an analysis")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("running child: %v", err)
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		t.Fatalf("wait status type = %T", exitErr.Sys())
	}
	if !ws.Signaled() || ws.Signal() != syscall.SIGINT {
		t.Fatalf("child exited with %v, want termination by SIGINT", err)
	}
}

func TestScoreStaysInRange(t *testing.T) {
	// Every check fires at once; the raw penalty sum is far below zero.
	code := "int main() {\n" +
		"  char big[9999];\n" +
		"  int *p = (int *)malloc(64);\n" +
		"  delay(20000);\n" +
		"  while (1) {\n" +
		"  }\n" +
		"}\n"
	r, err := AnalyzeForBoard(code, "esp32c3")
	if err != nil {
		t.Fatalf("AnalyzeForBoard: %v", err)
	}
	if r.QualityScore != 0 {
		t.Errorf("QualityScore = %d, want clamped to 0", r.QualityScore)
	}
}
