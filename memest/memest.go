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

// Package memest estimates RAM pressure of a firmware snippet against a
// board profile. The model is a declaration-count heuristic, not a linker
// map: 4 bytes per scalar global, 20 per array, 10 per struct.
package memest

import (
	"regexp"

	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/basic"
)

var (
	globalVarRE = regexp.MustCompile(`(?m)^\s*(int|float|double|char|bool|uint\d+_t)\s+\w+`)
	arrayRE     = regexp.MustCompile(`\[\s*\d+\s*\]`)
	structRE    = regexp.MustCompile(`(struct|typedef\s+struct)`)
)

const (
	bytesPerScalar = 4
	bytesPerArray  = 20
	bytesPerStruct = 10
)

// Margin labels ordered from healthy to exhausted.
const (
	MarginGood     = "good"
	MarginWarning  = "warning"
	MarginCritical = "critical"
)

type Estimate struct {
	CodeSizeKB   float64 `json:"estimated_code_size_kb"`
	GlobalVarsKB float64 `json:"estimated_global_vars_kb"`
	FreeRAMKB    float64 `json:"estimated_free_ram_kb"`
	UsagePercent float64 `json:"usage_percent"`
	SafetyMargin string  `json:"safety_margin"`
}

func Compute(code string, b *board.Profile) Estimate {
	codeSizeKB := float64(len(code)) / 1024

	globalVars := len(globalVarRE.FindAllStringIndex(code, -1))
	arrays := len(arrayRE.FindAllStringIndex(code, -1))
	structs := len(structRE.FindAllStringIndex(code, -1))
	globalKB := float64(globalVars*bytesPerScalar+arrays*bytesPerArray+structs*bytesPerStruct) / 1024

	usedKB := codeSizeKB + globalKB + float64(b.SystemReservedKB)
	freeKB := float64(b.TotalRAMKB) - usedKB
	if freeKB < 0 {
		freeKB = 0
	}
	usagePercent := usedKB / float64(b.TotalRAMKB) * 100
	if usagePercent > 100 {
		usagePercent = 100
	}

	margin := MarginGood
	if usagePercent > 80 {
		margin = MarginCritical
	} else if usagePercent > 50 {
		margin = MarginWarning
	}

	return Estimate{
		CodeSizeKB:   basic.RoundTo(codeSizeKB, 2),
		GlobalVarsKB: basic.RoundTo(globalKB, 2),
		FreeRAMKB:    basic.RoundTo(freeKB, 2),
		UsagePercent: basic.RoundTo(usagePercent, 1),
		SafetyMargin: margin,
	}
}
