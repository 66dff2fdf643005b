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

package results

import (
	"encoding/json"
	"fmt"
)

// Category is the problem domain of a single result. The set is closed:
// every rule package reports exactly one of these values.
type Category int32

const (
	UnknownCategory Category = iota
	Correctness
	Memory
	Performance
	Safety
	Style
)

var categoryNames = map[Category]string{
	Correctness: "correctness",
	Memory:      "memory",
	Performance: "performance",
	Safety:      "safety",
	Style:       "style",
}

// Categories lists all known categories in report order.
var Categories = []Category{Correctness, Memory, Performance, Safety, Style}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

func CategoryFromString(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return UnknownCategory, fmt.Errorf("unknown category: %s", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := CategoryFromString(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Severity is the ordinal problem rank: Critical > High > Medium > Low.
type Severity int32

const (
	UnknownSeverity Severity = iota
	Critical
	High
	Medium
	Low
)

var severityNames = map[Severity]string{
	Critical: "critical",
	High:     "high",
	Medium:   "medium",
	Low:      "low",
}

// Severities lists all known severities from most to least severe.
var Severities = []Severity{Critical, High, Medium, Low}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

func SeverityFromString(s string) (Severity, error) {
	for sev, name := range severityNames {
		if name == s {
			return sev, nil
		}
	}
	return UnknownSeverity, fmt.Errorf("unknown severity: %s", s)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := SeverityFromString(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Result is a single detected quality problem. A Result is created by one
// rule during one analysis pass and is owned by the report of that pass.
type Result struct {
	Category     Category `json:"type"`
	Severity     Severity `json:"severity"`
	ErrorMessage string   `json:"message"`
	Suggestion   string   `json:"suggestion"`
	// LineNumber is 1-based. Zero means the rule has no match site to point
	// at, for example when it reports something missing from the text.
	LineNumber int32  `json:"line_number,omitempty"`
	Path       string `json:"path,omitempty"`
	Ruleset    string `json:"ruleset,omitempty"`
	RuleId     string `json:"rule_id,omitempty"`
	Id         string `json:"id,omitempty"`
}

type ResultsList struct {
	Results []*Result `json:"results"`
}
