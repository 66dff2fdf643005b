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

package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"naive.systems/firmcheck/analyzer"
	"naive.systems/firmcheck/analyzer/analyzerinterface"
	"naive.systems/firmcheck/analyzer/checkrule"
	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/atomic"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cpumem"
	"naive.systems/firmcheck/cruleslib/basic"
	"naive.systems/firmcheck/cruleslib/filter"
	"naive.systems/firmcheck/cruleslib/i18n"
	"naive.systems/firmcheck/cruleslib/options"
	"naive.systems/firmcheck/cruleslib/runner"
	"naive.systems/firmcheck/cruleslib/stats"
	"naive.systems/firmcheck/diff"
	fwanalyzer "naive.systems/firmcheck/firmware_rules/analyzer"
	"naive.systems/firmcheck/report"
	"naive.systems/firmcheck/rulesets"
	"naive.systems/firmcheck/telemetry/client/sender"
)

// perTaskBaseMemKB is the memory budget charged per analyzed file on top
// of a multiple of its size, used with -limit_memory.
const perTaskBaseMemKB = 1024

func main() {
	sharedOptions := options.NewSharedOptions()
	flag.Parse()
	defer glog.Flush()

	// Do not call any logging functions of glog before this part.
	printer := i18n.GetPrinter(sharedOptions.GetLang())

	logDir := flag.Lookup("log_dir")
	if logDir.Value.String() == "" && sharedOptions.GetResultsDir() != "" {
		err := flag.Set("log_dir", filepath.Join(sharedOptions.GetResultsDir(), "logs"))
		if err != nil {
			glog.Fatalf("failed to set default log_dir: %v", err)
		}
	}
	if logDir.Value.String() != "" {
		err := analyzerinterface.CreateLogDir(logDir.Value.String())
		if err != nil {
			glog.Fatalf("failed to create log dir: %v", err)
		}
	}

	if !sharedOptions.GetDebugMode() {
		err := flag.Set("stderrthreshold", "FATAL")
		if err != nil {
			glog.Fatalf("failed to set default stderrthreshold: %v", err)
		}
	}

	fmt.Println("(c) 2023 Naive Systems Ltd.")

	start := time.Now()
	resultsDir := sharedOptions.GetResultsDir()
	if resultsDir != "" {
		err := analyzerinterface.CreateResultDir(resultsDir)
		if err != nil {
			glog.Fatalf("failed to create result dir: %v", err)
		}
	}

	if sharedOptions.GetCheckProgress() {
		basic.PrintfWithTimeStamp(printer.Sprintf("Start collecting source files"))
		if resultsDir != "" {
			stats.WriteProgress(resultsDir, stats.COLLECT, "0%", start)
		}
	}

	registry := board.Builtin()
	if sharedOptions.GetBoardsOverlay() != "" {
		var err error
		registry, err = board.LoadOverlay(sharedOptions.GetBoardsOverlay())
		if err != nil {
			glog.Fatalf("failed to load boards overlay: %v", err)
		}
	}
	boardProfile := registry.Resolve(sharedOptions.GetBoard())
	glog.Infof("analyzing for board %s (%s)", boardProfile.Id, boardProfile.Name)

	checkRules := fwanalyzer.DefaultCheckRules()
	if sharedOptions.GetCheckRules() != "" {
		var err error
		checkRules, err = analyzerinterface.ReadCheckRules(sharedOptions.GetCheckRules())
		if err != nil {
			glog.Fatalf("failed to read check rules: %v", err)
		}
		checkRules = analyzerinterface.FilterCheckRules(checkRules, "firmware")
	}
	if len(checkRules) == 0 {
		glog.Fatal("no firmware rules enabled")
	}

	files, err := analyzerinterface.ListSourceFiles(sharedOptions.GetSrcDir(), sharedOptions.GetIgnoreDirPatterns())
	if err != nil {
		glog.Fatalf("failed to list source files: %v", err)
	}
	if len(files) == 0 {
		glog.Warningf("no source files found under %s", sharedOptions.GetSrcDir())
	}

	loc, err := analyzerinterface.CountLinesUnderDir(
		[]string{sharedOptions.GetSrcDir()},
		analyzerinterface.CountLangs,
		sharedOptions.GetIgnoreDirPatterns())
	if err != nil {
		glog.Errorf("failed to count lines: %v", err)
	} else if resultsDir != "" {
		stats.WriteLOC(resultsDir, loc)
	}

	if sharedOptions.GetReportTelemetry() {
		sender.Enable("")
		sender.Send("analysis started",
			"board", boardProfile.Id,
			"files", len(files),
			"loc", loc)
	}

	initResourceBudget(sharedOptions)

	envOpts := options.NewEnvOptions(
		resultsDir,
		logDir.Value.String(),
		sharedOptions.GetCheckProgress(),
		sharedOptions.GetDebugMode(),
		int32(sharedOptions.GetNumWorkers()),
		sharedOptions.GetLang())
	envOpts.LimitMemory = sharedOptions.GetLimitMemory()
	envOpts.AvailMemRatio = sharedOptions.GetAvailMemRatio()

	reports := analyzeFiles(files, boardProfile, checkRules, envOpts, sharedOptions)

	if sharedOptions.GetCheckProgress() && resultsDir != "" {
		stats.WriteProgress(resultsDir, stats.REPORT, "100%", start)
	}

	allResults := &results.ResultsList{}
	paths := make([]string, 0, len(reports))
	for path := range reports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		allResults.Results = append(allResults.Results, reports[path].Issues...)
	}

	allResults = &results.NewResultsSetFromList(allResults).ResultsList
	allResults = filter.ProcessIgnoreDir(allResults, sharedOptions.GetIgnoreDirPatterns())
	allResults = filter.DropSuppressedRules(allResults, sharedOptions.GetSuppressedRules())
	if sharedOptions.GetDiffFile() != "" {
		content, err := os.ReadFile(sharedOptions.GetDiffFile())
		if err != nil {
			glog.Fatalf("failed to read diff file: %v", err)
		}
		patch, err := diff.Parse(string(content))
		if err != nil {
			glog.Fatalf("failed to parse diff file: %v", err)
		}
		allResults = diff.FilterResults(allResults, patch)
	}
	analyzerinterface.AddID(allResults)
	allResults = runner.SortResult(allResults)

	if resultsDir != "" {
		resultsJsonPath := filepath.Join(resultsDir, "fc_results.json")
		err = atomic.WriteJSON(resultsJsonPath, reports)
		if err != nil {
			glog.Fatalf("failed to write results: %v", err)
		}
		stats.CountSeverityAndWrite(allResults, resultsDir)
		glog.Infof("All results have been written to %s (%d in total), exit. ", resultsJsonPath, len(allResults.Results))
	}

	if sharedOptions.GetShowResults() {
		printReports(paths, reports)
	}
	if sharedOptions.GetShowJsonResults() {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reports); err != nil {
			glog.Errorf("failed to encode reports: %v", err)
		}
	}
	if sharedOptions.GetShowResultsCount() {
		printSeverityCount(allResults)
	}

	elapsed := time.Since(start)
	if sharedOptions.GetCheckProgress() {
		if resultsDir != "" {
			stats.WriteProgress(resultsDir, stats.END, "100%", start)
		}
		timeUsed := basic.FormatTimeDuration(elapsed)
		basic.PrintfWithTimeStamp(printer.Sprintf("Total time for analysis: %s", timeUsed))
	}

	if sharedOptions.GetReportTelemetry() {
		sender.Send("analysis finished",
			"files", len(reports),
			"issues", len(allResults.Results),
			"seconds", int(elapsed.Seconds()))
		sender.Wait()
	}
	glog.Flush()
}

// initResourceBudget sizes the cpumem semaphore. Without -limit_memory the
// memory budget is effectively unbounded and only CPU gates concurrency.
func initResourceBudget(sharedOptions *options.SharedOptions) {
	numCPU := int(sharedOptions.GetNumWorkers())
	if numCPU == 0 {
		numCPU = 4
	}
	memKB := 1 << 30
	if sharedOptions.GetLimitMemory() {
		availKB, err := readAvailableMemoryKB()
		if err != nil {
			glog.Warningf("failed to read available memory, running unbounded: %v", err)
		} else {
			memKB = int(float64(availKB) * sharedOptions.GetAvailMemRatio())
		}
	}
	cpumem.Init(numCPU, memKB)
}

func readAvailableMemoryKB() (int, error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		return strconv.Atoi(fields[1])
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("MemAvailable not found in /proc/meminfo")
}

// analyzeFiles runs the pipeline once per source file. Files are analyzed
// concurrently, bounded by the cpumem budget; results are keyed by path so
// output order never depends on scheduling.
func analyzeFiles(
	files []string,
	boardProfile *board.Profile,
	checkRules []checkrule.CheckRule,
	envOpts *options.EnvOptions,
	sharedOptions *options.SharedOptions,
) map[string]*report.QualityReport {
	reports := make(map[string]*report.QualityReport, len(files))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, path := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			content, err := os.ReadFile(path)
			if err != nil {
				glog.Errorf("os.ReadFile(%s): %v", path, err)
				return
			}
			code := string(content)

			taskMemKB := perTaskBaseMemKB + 4*len(code)/1024
			if err := cpumem.Acquire(1, taskMemKB, path); err != nil {
				glog.Errorf("cpumem.Acquire(%s): %v", path, err)
				return
			}
			defer cpumem.Release(1, taskMemKB)

			fileReport, err := analyzer.AnalyzeWithOptions(code, boardProfile, checkRules, envOpts)
			if err != nil {
				glog.Errorf("analyze %s: %v", path, err)
				return
			}
			for _, issue := range fileReport.Issues {
				issue.Path = path
			}

			mu.Lock()
			reports[path] = fileReport
			mu.Unlock()
		}(path)
	}
	wg.Wait()
	return reports
}

func printReports(paths []string, reports map[string]*report.QualityReport) {
	for _, path := range paths {
		r := reports[path]
		fmt.Printf("%s: %d/100 (%s)\n", path, r.QualityScore, r.Severity)
		fmt.Printf("  %s\n", r.Summary)
		fmt.Printf("  Memory: %.1f%% used (%s), %.2f KB free\n",
			r.EstimatedRAMUsagePercent, r.MemoryStatus, r.EstimatedFreeRAMKB)
		for _, issue := range r.Issues {
			fmt.Printf("  [%s] %s: %s\n",
				strings.ToUpper(issue.Severity.String()),
				rulesets.GetRuleFullName(issue.Ruleset, issue.RuleId),
				issue.ErrorMessage)
			if issue.Suggestion != "" {
				fmt.Printf("    Suggestion: %s\n", issue.Suggestion)
			}
			if issue.LineNumber > 0 {
				code, err := rulesets.GetCode(path, issue.LineNumber, "utf8")
				if err != nil {
					glog.Warningf("rulesets.GetCode(%s): %v", path, err)
					continue
				}
				fmt.Print(code)
			}
		}
	}
}

func printSeverityCount(allResults *results.ResultsList) {
	bytes, err := stats.GetSeverityCountBytes(allResults)
	if err != nil {
		glog.Errorf("stats.GetSeverityCountBytes: %v", err)
		return
	}
	fmt.Println(string(bytes))
}
