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

// Package performance classifies blocking behavior. A long blocking delay is
// catastrophic only where real-time responsiveness is promised, so severity
// follows the board's realtime flag.
package performance

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
	delayCallRE    = regexp.MustCompile(`delay\s*\(\s*(\d+)\s*\)`)
	infiniteLoopRE = regexp.MustCompile(`while\s*\(\s*1\s*\)|while\s*\(\s*true\s*\)`)
)

// Policy constants shared with downstream consumers; exact values matter.
const (
	veryLongDelayMs     = 10000
	longDelayMs         = 1000
	serialSpamThreshold = 5
)

func Analyze(code string, b *board.Profile, opts *options.CheckOptions) (*results.ResultsList, error) {
	resultsList := &results.ResultsList{}

	for _, m := range delayCallRE.FindAllStringSubmatchIndex(code, -1) {
		delayMs, err := strconv.Atoi(code[m[2]:m[3]])
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			continue
		}
		// On ErrRange, Atoi saturates to MaxInt: a delay too long for an
		// int is still a very long delay.
		if delayMs >= veryLongDelayMs {
			sev := results.High
			if b.IsRealtime {
				sev = results.Critical
			}
			resultsList.Results = append(resultsList.Results, &results.Result{
				Category:     results.Performance,
				Severity:     sev,
				ErrorMessage: fmt.Sprintf("Very long delay (%dms) detected - blocks entire system", delayMs),
				Suggestion:   "Use non-blocking timing: millis() or FreeRTOS tasks",
				LineNumber:   basic.LineNumberAt(code, m[0]),
			})
		} else if delayMs >= longDelayMs {
			sev := results.Medium
			if b.IsRealtime {
				sev = results.High
			}
			resultsList.Results = append(resultsList.Results, &results.Result{
				Category:     results.Performance,
				Severity:     sev,
				ErrorMessage: fmt.Sprintf("Long delay (%dms) may impact responsiveness", delayMs),
				Suggestion:   "Consider reducing delay or using non-blocking code",
				LineNumber:   basic.LineNumberAt(code, m[0]),
			})
		}
	}

	// while(1) bypasses loop(), the cooperative re-entry point.
	if loc := infiniteLoopRE.FindStringIndex(code); loc != nil {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Performance,
			Severity:     results.High,
			ErrorMessage: "Infinite loop with while(1) or while(true) detected",
			Suggestion:   "Use the loop() function instead for continuous execution",
			LineNumber:   basic.LineNumberAt(code, loc[0]),
		})
	}

	serialCalls := strings.Count(code, "Serial.print")
	if serialCalls > serialSpamThreshold && !strings.Contains(code, "delay") {
		resultsList.Results = append(resultsList.Results, &results.Result{
			Category:     results.Performance,
			Severity:     results.Medium,
			ErrorMessage: "Multiple Serial.print calls without delays may overwhelm serial buffer",
			Suggestion:   "Add delay(100) or reduce print frequency",
		})
	}

	return resultsList, nil
}
