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

package options

import (
	"flag"
	"fmt"
	"strings"
)

// ArrayFlags collects a repeatable string flag, such as -ignore_dir.
type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return fmt.Sprint(*i)
}

func (i *ArrayFlags) Set(value string) error {
	values := strings.Split(value, ",")
	for _, v := range values {
		*i = append(*i, v)
	}
	return nil
}

type SharedOptions struct {
	Board             *string
	BoardsOverlay     *string
	CheckProgress     *bool
	CheckRules        *string
	DebugMode         *bool
	DiffFile          *string
	IgnoreDirPatterns ArrayFlags
	Lang              *string
	LimitMemory       *bool
	AvailMemRatio     *float64
	NumWorkers        *int64
	ReportTelemetry   *bool
	ResultsDir        *string
	ShowResults       *bool
	ShowJsonResults   *bool
	ShowResultsCount  *bool
	SrcDir            *string
	SuppressedRules   ArrayFlags
}

func NewSharedOptions() *SharedOptions {
	s := &SharedOptions{}
	s.Board = flag.String("board", "esp32dev", "target board identifier")
	s.BoardsOverlay = flag.String("boards_overlay", "", "optional YAML file with extra board profiles")
	s.CheckProgress = flag.Bool("check_progress", false, "print and record analysis progress")
	s.CheckRules = flag.String("check_rules", "", "path of the check_rules file; empty enables all rules")
	s.DebugMode = flag.Bool("debug", false, "debug mode")
	s.DiffFile = flag.String("diff", "", "unified diff file; only issues on changed lines are reported")
	flag.Var(&s.IgnoreDirPatterns, "ignore_dir", "double-star patterns of paths to skip (repeatable)")
	s.Lang = flag.String("lang", "en", "language of progress messages (en, zh)")
	s.LimitMemory = flag.Bool("limit_memory", false, "bound concurrent file analyses by available memory")
	s.AvailMemRatio = flag.Float64("avail_mem_ratio", 0.9, "ratio of available memory the analysis may use")
	s.NumWorkers = flag.Int64("num_workers", 0, "number of concurrent rule workers; 0 means NumCPU")
	s.ReportTelemetry = flag.Bool("report_telemetry", false, "send anonymous analysis statistics")
	s.ResultsDir = flag.String("results_dir", "", "directory of the analysis results")
	s.ShowResults = flag.Bool("show_results", true, "print the report summary for each analyzed file")
	s.ShowJsonResults = flag.Bool("show_json_results", false, "print the full report as JSON")
	s.ShowResultsCount = flag.Bool("show_results_count", true, "print per-severity issue counts")
	s.SrcDir = flag.String("srcdir", "/src", "directory of the source files to analyze")
	flag.Var(&s.SuppressedRules, "suppress_rule", "ruleset/rule identifiers to drop from the output (repeatable)")
	return s
}

func (s SharedOptions) GetBoard() string {
	return *s.Board
}

func (s SharedOptions) GetBoardsOverlay() string {
	return *s.BoardsOverlay
}

func (s SharedOptions) GetCheckProgress() bool {
	return *s.CheckProgress
}

func (s SharedOptions) GetCheckRules() string {
	return *s.CheckRules
}

func (s SharedOptions) GetDebugMode() bool {
	return *s.DebugMode
}

func (s SharedOptions) GetDiffFile() string {
	return *s.DiffFile
}

func (s SharedOptions) GetIgnoreDirPatterns() ArrayFlags {
	return s.IgnoreDirPatterns
}

func (s SharedOptions) GetLang() string {
	return *s.Lang
}

func (s SharedOptions) GetLimitMemory() bool {
	return *s.LimitMemory
}

func (s SharedOptions) GetAvailMemRatio() float64 {
	return *s.AvailMemRatio
}

func (s SharedOptions) GetNumWorkers() int64 {
	return *s.NumWorkers
}

func (s SharedOptions) GetReportTelemetry() bool {
	return *s.ReportTelemetry
}

func (s SharedOptions) GetResultsDir() string {
	return *s.ResultsDir
}

func (s SharedOptions) GetShowResults() bool {
	return *s.ShowResults
}

func (s SharedOptions) GetShowJsonResults() bool {
	return *s.ShowJsonResults
}

func (s SharedOptions) GetShowResultsCount() bool {
	return *s.ShowResultsCount
}

func (s SharedOptions) GetSrcDir() string {
	return *s.SrcDir
}

func (s SharedOptions) GetSuppressedRules() ArrayFlags {
	return s.SuppressedRules
}

func (s *SharedOptions) SetLang(lang string) {
	*s.Lang = lang
}

func (s *SharedOptions) SetSrcDir(srcDir string) {
	*s.SrcDir = srcDir
}
