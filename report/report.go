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

// Package report assembles the aggregate quality report: score, issue
// groupings, memory estimate, and a one-line human summary. Every grouping
// key is always present in the JSON output, empty groups marshal as [].
package report

import (
	"fmt"
	"strings"

	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/basic"
	"naive.systems/firmcheck/memest"
)

type IssuesBySeverity struct {
	Critical []*results.Result `json:"critical"`
	High     []*results.Result `json:"high"`
	Medium   []*results.Result `json:"medium"`
	Low      []*results.Result `json:"low"`
}

type IssuesByType struct {
	Memory      []*results.Result `json:"memory"`
	Performance []*results.Result `json:"performance"`
	Correctness []*results.Result `json:"correctness"`
	Safety      []*results.Result `json:"safety"`
	Style       []*results.Result `json:"style"`
}

type QualityReport struct {
	QualityScore int     `json:"quality_score"`
	CodeLines    int     `json:"code_lines"`
	CodeSizeKB   float64 `json:"code_size_kb"`

	Issues           []*results.Result `json:"issues"`
	IssuesBySeverity IssuesBySeverity  `json:"issues_by_severity"`
	IssuesByType     IssuesByType      `json:"issues_by_type"`

	IssuesCount   int `json:"issues_count"`
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`

	EstimatedRAMUsagePercent float64 `json:"estimated_ram_usage_percent"`
	EstimatedFreeRAMKB       float64 `json:"estimated_free_ram_kb"`
	MemoryStatus             string  `json:"memory_status"`

	Severity string `json:"severity"`
	Summary  string `json:"summary"`
	Board    string `json:"board"`
}

func emptyGroup() []*results.Result {
	return make([]*results.Result, 0)
}

// Build assembles the final report from the collected results, the memory
// estimate, and the already computed score.
func Build(code string, list *results.ResultsList, est memest.Estimate, score int, b *board.Profile) *QualityReport {
	r := &QualityReport{
		QualityScore: score,
		CodeLines:    strings.Count(code, "\n") + 1,
		CodeSizeKB:   basic.RoundTo(float64(len(code))/1024, 2),
		IssuesBySeverity: IssuesBySeverity{
			Critical: emptyGroup(),
			High:     emptyGroup(),
			Medium:   emptyGroup(),
			Low:      emptyGroup(),
		},
		IssuesByType: IssuesByType{
			Memory:      emptyGroup(),
			Performance: emptyGroup(),
			Correctness: emptyGroup(),
			Safety:      emptyGroup(),
			Style:       emptyGroup(),
		},
		EstimatedRAMUsagePercent: est.UsagePercent,
		EstimatedFreeRAMKB:       est.FreeRAMKB,
		MemoryStatus:             est.SafetyMargin,
		Board:                    b.Name,
	}

	r.Issues = emptyGroup()
	r.Issues = append(r.Issues, list.Results...)
	for _, issue := range list.Results {
		switch issue.Severity {
		case results.Critical:
			r.IssuesBySeverity.Critical = append(r.IssuesBySeverity.Critical, issue)
		case results.High:
			r.IssuesBySeverity.High = append(r.IssuesBySeverity.High, issue)
		case results.Medium:
			r.IssuesBySeverity.Medium = append(r.IssuesBySeverity.Medium, issue)
		case results.Low:
			r.IssuesBySeverity.Low = append(r.IssuesBySeverity.Low, issue)
		}
		switch issue.Category {
		case results.Memory:
			r.IssuesByType.Memory = append(r.IssuesByType.Memory, issue)
		case results.Performance:
			r.IssuesByType.Performance = append(r.IssuesByType.Performance, issue)
		case results.Correctness:
			r.IssuesByType.Correctness = append(r.IssuesByType.Correctness, issue)
		case results.Safety:
			r.IssuesByType.Safety = append(r.IssuesByType.Safety, issue)
		case results.Style:
			r.IssuesByType.Style = append(r.IssuesByType.Style, issue)
		}
	}

	r.IssuesCount = len(r.Issues)
	r.CriticalCount = len(r.IssuesBySeverity.Critical)
	r.HighCount = len(r.IssuesBySeverity.High)
	r.MediumCount = len(r.IssuesBySeverity.Medium)
	r.LowCount = len(r.IssuesBySeverity.Low)

	r.Severity = overallSeverity(r)
	r.Summary = summarize(r, score)
	return r
}

// overallSeverity collapses the issue histogram into one label. A single
// critical result dominates; more than five issues of any kind still rate
// at least medium.
func overallSeverity(r *QualityReport) string {
	switch {
	case r.CriticalCount > 0:
		return "critical"
	case r.HighCount > 2:
		return "high"
	case r.HighCount > 0 || r.IssuesCount > 5:
		return "medium"
	case r.IssuesCount > 0:
		return "low"
	default:
		return "excellent"
	}
}

func summarize(r *QualityReport, score int) string {
	var quality, action string
	switch {
	case score >= 90:
		quality = "excellent"
		action = "Ready for production use"
	case score >= 75:
		quality = "good"
		action = "Minor improvements recommended"
	case score >= 50:
		quality = "acceptable"
		action = "Several issues should be addressed"
	default:
		quality = "poor"
		action = "Critical issues must be fixed before use"
	}

	var highlights []string
	if r.CriticalCount > 0 {
		highlights = append(highlights, fmt.Sprintf("%d critical issue(s)", r.CriticalCount))
	}
	if len(r.IssuesByType.Memory) > 0 {
		highlights = append(highlights, "memory concerns")
	}
	if len(r.IssuesByType.Performance) > 0 {
		highlights = append(highlights, "performance bottlenecks")
	}
	highlightStr := "no major issues"
	if len(highlights) > 0 {
		highlightStr = strings.Join(highlights, ", ")
	}

	return fmt.Sprintf("Code quality is %s (%d/100) with %s. %s.", quality, score, highlightStr, action)
}
