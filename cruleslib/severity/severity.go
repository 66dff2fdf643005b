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

package severity

import (
	"github.com/golang/glog"
	"naive.systems/firmcheck/analyzer/results"
)

// Base penalty per severity for the weighted quality score. These are policy
// constants shared with downstream consumers of the reports; do not tune them.
const (
	criticalWeight = 20
	highWeight     = 12
	mediumWeight   = 6
	lowWeight      = 3
	unknownWeight  = 5
)

func BaseWeight(s results.Severity) int {
	switch s {
	case results.Critical:
		return criticalWeight
	case results.High:
		return highWeight
	case results.Medium:
		return mediumWeight
	case results.Low:
		return lowWeight
	default:
		return unknownWeight
	}
}

// ApplyOverride rewrites the severity of every result in the list when a rule
// carries a custom severity option. An empty custom severity is a no-op; an
// unparsable one is logged and ignored.
func ApplyOverride(list *results.ResultsList, rule, customSeverity string) *results.ResultsList {
	if customSeverity == "" {
		return list
	}
	parsed, err := results.SeverityFromString(customSeverity)
	if err != nil {
		glog.Warningf("invalid custom severity %q for rule %s: %v", customSeverity, rule, err)
		return list
	}
	for _, r := range list.Results {
		r.Severity = parsed
	}
	return list
}
