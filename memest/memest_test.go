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

package memest

import (
	"strings"
	"testing"

	"naive.systems/firmcheck/board"
)

func TestComputeCountsDeclarations(t *testing.T) {
	code := "int counter;\nfloat temperature;\nchar buffer[64];\nstruct Reading {\n  int value;\n};\n"
	got := Compute(code, board.Resolve("esp32dev"))

	// 4 scalar declarations (int, float, char and the struct member),
	// one sized array, one struct keyword.
	wantGlobalKB := float64(4*4+1*20+1*10) / 1024
	if got.GlobalVarsKB != roundTo2(wantGlobalKB) {
		t.Errorf("GlobalVarsKB = %v, want %v", got.GlobalVarsKB, roundTo2(wantGlobalKB))
	}
	if got.SafetyMargin != MarginGood {
		t.Errorf("SafetyMargin = %q, want %q", got.SafetyMargin, MarginGood)
	}
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func TestComputeMarginThresholds(t *testing.T) {
	// 300KB of code on a board with 520KB RAM and 100KB reserved lands
	// above 50% but below 80%.
	warning := strings.Repeat("x", 300*1024)
	got := Compute(warning, board.Resolve("esp32dev"))
	if got.SafetyMargin != MarginWarning {
		t.Errorf("SafetyMargin = %q, want %q at %v%%", got.SafetyMargin, MarginWarning, got.UsagePercent)
	}

	critical := strings.Repeat("x", 400*1024)
	got = Compute(critical, board.Resolve("esp32dev"))
	if got.SafetyMargin != MarginCritical {
		t.Errorf("SafetyMargin = %q, want %q at %v%%", got.SafetyMargin, MarginCritical, got.UsagePercent)
	}
}

func TestComputeClampsUsage(t *testing.T) {
	code := strings.Repeat("x", 600*1024)
	got := Compute(code, board.Resolve("esp32dev"))
	if got.UsagePercent != 100 {
		t.Errorf("UsagePercent = %v, want clamped to 100", got.UsagePercent)
	}
	if got.FreeRAMKB != 0 {
		t.Errorf("FreeRAMKB = %v, want 0 when overcommitted", got.FreeRAMKB)
	}
}

func TestComputeEmptyCode(t *testing.T) {
	got := Compute("", board.Resolve("esp32dev"))
	if got.CodeSizeKB != 0 || got.GlobalVarsKB != 0 {
		t.Errorf("empty code should estimate zero usage, got %+v", got)
	}
	if got.SafetyMargin != MarginGood {
		t.Errorf("SafetyMargin = %q, want %q", got.SafetyMargin, MarginGood)
	}
}
