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

// Package scoring reduces a results list to a 0-100 quality score. The
// penalty per result is its severity weight scaled by a category multiplier
// derived from the board, truncated to an integer before subtraction.
package scoring

import (
	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/severity"
)

// CategoryMultiplier reflects how much a category matters on this board.
// Memory issues weigh more on low-RAM boards, performance issues weigh
// more under realtime constraints and less otherwise, style always weighs
// half.
func CategoryMultiplier(c results.Category, b *board.Profile) float64 {
	switch c {
	case results.Memory:
		if b.TotalRAMKB < 500 {
			return 1.5
		}
		return 1.0
	case results.Performance:
		if b.IsRealtime {
			return 1.3
		}
		return 0.8
	case results.Style:
		return 0.5
	case results.Correctness, results.Safety:
		return 1.0
	default:
		return 1.0
	}
}

// Score starts at 100 and subtracts a penalty per result. The sum may run
// below zero before clamping; only the final value is clamped to [0, 100].
func Score(list *results.ResultsList, b *board.Profile) int {
	score := 100
	for _, r := range list.Results {
		penalty := float64(severity.BaseWeight(r.Severity)) * CategoryMultiplier(r.Category, b)
		score -= int(penalty)
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
