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

package filter

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"golang.org/x/exp/slices"
	"naive.systems/firmcheck/analyzer/results"
)

// MatchIgnoreDirPatterns reports whether filePath matches any of the
// double-star ignore patterns.
func MatchIgnoreDirPatterns(ignoreDirPatterns []string, filePath string) (bool, error) {
	matched := false
	var err error
	for _, ignoreDirPattern := range ignoreDirPatterns {
		matched, err = doublestar.Match(ignoreDirPattern, filePath)
		if err != nil {
			return matched, fmt.Errorf("malformed ignore_dir pattern %s", ignoreDirPattern)
		}
		if matched {
			glog.Infof("Source file %s ignored due to pattern %s", filePath, ignoreDirPattern)
			break
		}
	}
	return matched, nil
}

// ProcessIgnoreDir drops results whose path matches an ignore pattern. A
// malformed pattern keeps the results of that round untouched.
func ProcessIgnoreDir(allResults *results.ResultsList, ignoreDirPatterns []string) *results.ResultsList {
	for _, ignoreDirPattern := range ignoreDirPatterns {
		newResults := []*results.Result{}
		for _, result := range allResults.Results {
			matched, err := doublestar.Match(ignoreDirPattern, result.Path)
			if err != nil {
				glog.Error("malformed ignore_dir pattern ", ignoreDirPattern)
				newResults = allResults.Results
				break
			}
			if matched {
				glog.Infof("Result in path %s ignored due to pattern %s", result.Path, ignoreDirPattern)
			} else {
				newResults = append(newResults, result)
			}
		}
		allResults.Results = newResults
	}
	return allResults
}

// DropSuppressedRules removes every result emitted by one of the named rules.
// Rule names use the ruleset/rule form, e.g. "firmware/style".
func DropSuppressedRules(allResults *results.ResultsList, suppressedRules []string) *results.ResultsList {
	if len(suppressedRules) == 0 {
		return allResults
	}
	kept := []*results.Result{}
	for _, result := range allResults.Results {
		name := result.Ruleset + "/" + result.RuleId
		if slices.Contains(suppressedRules, name) {
			glog.Infof("Result of rule %s suppressed", name)
			continue
		}
		kept = append(kept, result)
	}
	allResults.Results = kept
	return allResults
}
