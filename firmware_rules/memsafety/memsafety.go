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

// Package memsafety covers static allocation pressure and heap hygiene.
// Severity is board-relative: the same allocation is more dangerous on a
// low-RAM board.
package memsafety

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/basic"
	"naive.systems/firmcheck/cruleslib/options"
)

var (
	sizedCharArrayRE   = regexp.MustCompile(`char\s+\w+\s*\[\s*(\d+)\s*\]`)
	longPrintLiteralRE = regexp.MustCompile(`Serial\.print(?:ln)?\s*\(\s*"[^"]{10,}"`)
)

// Policy constants shared with downstream consumers; exact values matter.
const (
	largeArrayThresholdBytes = 1000
	lowRAMThresholdKB        = 500
	flashHintThreshold       = 3
)

func Analyze(code string, b *board.Profile, opts *options.CheckOptions) (*results.ResultsList, error) {
	resultsList := &results.ResultsList{}

	for _, m := range sizedCharArrayRE.FindAllStringSubmatchIndex(code, -1) {
		size, err := strconv.Atoi(code[m[2]:m[3]])
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			continue
		}
		// On ErrRange, Atoi saturates to MaxInt, which still clears the
		// threshold: an allocation too large for an int is certainly large.
		if size > largeArrayThresholdBytes {
			sev := results.High
			if b.TotalRAMKB < lowRAMThresholdKB {
				sev = results.Critical
			}
			resultsList.Results = append(resultsList.Results, &results.Result{
				Category:     results.Memory,
				Severity:     sev,
				ErrorMessage: fmt.Sprintf("Large static array allocation (%d bytes) detected", size),
				Suggestion:   fmt.Sprintf("Use dynamic allocation or reduce size. Board has only %dKB RAM", b.TotalRAMKB),
				LineNumber:   basic.LineNumberAt(code, m[0]),
			})
		}
	}

	mallocCount := strings.Count(code, "malloc")
	freeCount := strings.Count(code, "free")
	if mallocCount > 0 && mallocCount > freeCount {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Memory,
			Severity:     results.High,
			ErrorMessage: fmt.Sprintf("Potential memory leak: %d malloc calls but only %d free calls", mallocCount, freeCount),
			Suggestion:   "Ensure every malloc() has a corresponding free()",
		})
	}

	// Long string literals printed without the F() macro live in RAM
	// instead of flash.
	stringLiterals := len(longPrintLiteralRE.FindAllStringIndex(code, -1))
	if stringLiterals > flashHintThreshold {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Memory,
			Severity:     results.Medium,
			ErrorMessage: fmt.Sprintf("Found %d string literals without F() macro", stringLiterals),
			Suggestion:   `Use F("text") to store strings in flash: Serial.println(F("message"));`,
		})
	}

	return resultsList, nil
}
