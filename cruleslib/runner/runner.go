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

package runner

import (
	"errors"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/golang/glog"
	"golang.org/x/text/message"
	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/basic"
	"naive.systems/firmcheck/cruleslib/i18n"
	"naive.systems/firmcheck/cruleslib/options"
	"naive.systems/firmcheck/cruleslib/severity"
	"naive.systems/firmcheck/cruleslib/stats"
)

// AnalyzeFunc is the signature every rule package exports: a pure function
// over the code text and the resolved board profile.
type AnalyzeFunc func(code string, b *board.Profile, opts *options.CheckOptions) (*results.ResultsList, error)

// The task for Runner to run in parallels
type AnalyzerTask struct {
	Id      int
	Code    string
	Board   *board.Profile
	Opts    *options.CheckOptions
	Analyze AnalyzeFunc
	Rule    string
}

type analyzerResult struct {
	id             int
	rule           string
	resultsList    *results.ResultsList
	customSeverity string
	maxReportNum   *int
	err            error
}

// A goroutine workgroup to run analyzers in parallel. Collected results are
// keyed by task id so that the flattened list is independent of goroutine
// scheduling: two runs over the same input produce the same report.
type ParaTaskRunner struct {
	showProgress   bool
	workerWg       sync.WaitGroup
	collectorWg    sync.WaitGroup
	jobs_chan      chan AnalyzerTask
	results_chan   chan analyzerResult
	sigs           chan os.Signal
	sigsStopOnce   sync.Once
	sigs_exiting   chan bool
	perTask        []*results.ResultsList
	errors         []error
	processPrinter basic.CheckingProcessPrinter
}

// modify the analyzer result.
// eg. tag each result with its ruleset and rule id.
// firmware/memsafety -> Ruleset "firmware", RuleId "memsafety"
func modifyResult(result *analyzerResult) {
	ruleset, ruleName, found := strings.Cut(result.rule, "/")
	if !found {
		ruleset = "firmware"
		ruleName = result.rule
	}
	for _, r := range result.resultsList.Results {
		r.Ruleset = ruleset
		r.RuleId = ruleName
	}
}

func (pt *ParaTaskRunner) worker(jobs <-chan AnalyzerTask, results_chan chan<- analyzerResult, printer *message.Printer) {
	for j := range jobs {
		if pt.showProgress {
			pt.processPrinter.StartAnalyzeTask(j.Rule, printer)
		}
		func() {
			defer func() {
				// recover from possible panic
				if r := recover(); r != nil {
					glog.Error("Recovered in analyze: ", r, string(debug.Stack()))
					results_chan <- analyzerResult{id: j.Id, err: errors.New("panic in analyze rule"), resultsList: nil, rule: j.Rule}
					if pt.showProgress {
						pt.processPrinter.FinishAnalyzeTask(j.Rule, printer)
					}
				}
			}()
			resultList, err := j.Analyze(j.Code, j.Board, j.Opts)
			customSeverity := ""
			var maxReportNum *int
			if j.Opts != nil {
				if j.Opts.JsonOption.Severity != nil {
					customSeverity = *j.Opts.JsonOption.Severity
				}
				maxReportNum = j.Opts.JsonOption.MaxReportNum
			}
			results_chan <- analyzerResult{id: j.Id, err: err, resultsList: resultList, rule: j.Rule, customSeverity: customSeverity, maxReportNum: maxReportNum}
			if pt.showProgress {
				pt.processPrinter.FinishAnalyzeTask(j.Rule, printer)
				if j.Opts != nil && j.Opts.EnvOption.ResultsDir != "" {
					stats.WriteProgress(j.Opts.EnvOption.ResultsDir, stats.AC, pt.processPrinter.GetPercentString(), pt.processPrinter.GetStartedAt())
				}
			}
		}()
	}
	pt.workerWg.Done()
}

// Create a new task runner and results collectors.
func NewParaTaskRunner(numWorkers int32, taskNums int, showProgress bool, lang string) *ParaTaskRunner {
	printer := i18n.GetPrinter(lang)
	if numWorkers == 0 {
		numWorkers = int32(runtime.NumCPU())
		if showProgress {
			basic.PrintfWithTimeStamp(printer.Sprintf("Use %d CPU(s)", numWorkers))
		}
	}
	paraRunner := &ParaTaskRunner{
		showProgress:   showProgress,
		jobs_chan:      make(chan AnalyzerTask, numWorkers),
		results_chan:   make(chan analyzerResult, numWorkers),
		sigs_exiting:   make(chan bool, 1),
		perTask:        make([]*results.ResultsList, taskNums),
		errors:         make([]error, taskNums),
		processPrinter: basic.NewCheckingProcessPrinter(taskNums),
	}
	for w := 0; w < int(numWorkers); w++ {
		paraRunner.workerWg.Add(1)
		go paraRunner.worker(paraRunner.jobs_chan, paraRunner.results_chan, printer)
	}

	paraRunner.sigs = make(chan os.Signal, 1)
	// if a signal is received, notify the loop to stop sending new workers
	signal.Notify(paraRunner.sigs, syscall.SIGINT)
	// collect results
	paraRunner.collectorWg.Add(1)
	go func() {
		for job_result := range paraRunner.results_chan {
			select {
			case <-paraRunner.sigs:
				// if received a SIGINT, stop collector and analyze rule loop
				if paraRunner.showProgress {
					basic.PrintfWithTimeStamp("Ctrl C Pressed. Stop analysis")
				}
				paraRunner.sigs_exiting <- true
				paraRunner.collectorWg.Done()
				return
			default:
			}
			if job_result.err == nil {
				modifyResult(&job_result)
				withSeverity := severity.ApplyOverride(job_result.resultsList, job_result.rule, job_result.customSeverity)
				if job_result.maxReportNum != nil && len(withSeverity.Results) > *job_result.maxReportNum {
					withSeverity.Results = withSeverity.Results[:*job_result.maxReportNum]
				}
				paraRunner.perTask[job_result.id] = withSeverity
			} else {
				glog.Errorf("Analyze %v got error %v", job_result.rule, job_result.err)
			}
			paraRunner.errors[job_result.id] = job_result.err
		}
		paraRunner.collectorWg.Done()
	}()
	return paraRunner
}

// stopSignalHandler releases the SIGINT registration once the run is over.
// The runner is created per analysis, so a registration left behind would
// accumulate and keep SIGINT handled process-wide after the call returns.
func (pt *ParaTaskRunner) stopSignalHandler() {
	pt.sigsStopOnce.Do(func() {
		signal.Stop(pt.sigs)
	})
}

func (pt *ParaTaskRunner) flatten() *results.ResultsList {
	all := &results.ResultsList{}
	for _, list := range pt.perTask {
		if list == nil {
			continue
		}
		all.Results = append(all.Results, list.Results...)
	}
	return all
}

// check for the SIGINT exiting signal
// If the exiting signal is received, it will return results and errors.
// results will never be nil if the exiting signal is received.
// If the exiting signal is not received, it will return nil for results and nil for errors.
func (pt *ParaTaskRunner) CheckSignalExiting() (resultsList *results.ResultsList, errors []error) {
	select {
	// if received a SIGINT, stop analyze rule loop
	case <-pt.sigs_exiting:
		// close the jobs_chan to let worker end
		close(pt.jobs_chan)
		pt.collectorWg.Wait()
		pt.stopSignalHandler()
		// return results and errors directly because collector has stopped.
		return pt.flatten(), pt.errors
	default:
		return nil, nil
	}
}

// Add a task to the task runner and start running the task.
func (pt *ParaTaskRunner) AddTask(task AnalyzerTask) {
	pt.jobs_chan <- task
}

// Wait until all the tasks workers and collectors are finished and all results are collected.
// Return the results and errors. Results keep task registration order.
func (pt *ParaTaskRunner) CollectResultsAndErrors() (resultsList *results.ResultsList, errors []error) {
	go func() {
		pt.workerWg.Wait()
		close(pt.results_chan)
	}()
	close(pt.jobs_chan)
	pt.collectorWg.Wait()
	pt.stopSignalHandler()
	return pt.flatten(), pt.errors
}

// SortResult orders results by path and line number for stable aggregate
// output across files.
func SortResult(resultsList *results.ResultsList) *results.ResultsList {
	sort.SliceStable(resultsList.Results, func(i, j int) bool {
		list := resultsList.Results
		if list[i].Path != list[j].Path {
			return list[i].Path < list[j].Path
		}
		return list[i].LineNumber < list[j].LineNumber
	})
	return resultsList
}
