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

// Package analyzer dispatches firmware rules over a code snippet through the
// parallel task runner and collects their results in rule order.
package analyzer

import (
	"strings"

	"github.com/golang/glog"
	"naive.systems/firmcheck/analyzer/checkrule"
	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/board"
	"naive.systems/firmcheck/cruleslib/options"
	"naive.systems/firmcheck/cruleslib/runner"
	"naive.systems/firmcheck/firmware_rules/correctness"
	"naive.systems/firmcheck/firmware_rules/memsafety"
	"naive.systems/firmcheck/firmware_rules/performance"
	"naive.systems/firmcheck/firmware_rules/safety"
	"naive.systems/firmcheck/firmware_rules/style"
)

// RuleNames lists every firmware rule in report order.
var RuleNames = []string{
	"firmware/correctness",
	"firmware/memsafety",
	"firmware/performance",
	"firmware/safety",
	"firmware/style",
}

// DefaultCheckRules enables every rule with empty options.
func DefaultCheckRules() []checkrule.CheckRule {
	rules := make([]checkrule.CheckRule, 0, len(RuleNames))
	for _, name := range RuleNames {
		rules = append(rules, *checkrule.MakeCheckRuleWithoutError(name, "{}"))
	}
	return rules
}

func Run(rules []checkrule.CheckRule, code string, b *board.Profile, envOpts *options.EnvOptions) (*results.ResultsList, []error) {
	taskNums := len(rules)
	paraTaskRunner := runner.NewParaTaskRunner(envOpts.NumWorkers, taskNums, envOpts.CheckProgress, envOpts.Lang)

	for i, rule := range rules {
		exitingResults, exitingErrors := paraTaskRunner.CheckSignalExiting()
		if exitingResults != nil {
			return exitingResults, exitingErrors
		}

		ruleSpecific := options.NewRuleSpecificOptions(rule.Name, envOpts.ResultsDir)
		ruleOptions := options.MakeCheckOptions(&rule.JSONOptions, envOpts, ruleSpecific)
		// A rule may pin its own board, for example when a check_rules
		// file mixes targets in one run.
		ruleBoard := b
		if rule.JSONOptions.Board != nil {
			ruleBoard = board.Resolve(*rule.JSONOptions.Board)
		}

		x := func(analyze runner.AnalyzeFunc) {
			paraTaskRunner.AddTask(runner.AnalyzerTask{
				Id:      i,
				Code:    code,
				Board:   ruleBoard,
				Opts:    &ruleOptions,
				Analyze: analyze,
				Rule:    rule.Name,
			})
		}

		ruleName := strings.TrimPrefix(rule.Name, "firmware/")
		switch ruleName {
		case "correctness":
			x(correctness.Analyze)
		case "memsafety":
			x(memsafety.Analyze)
		case "performance":
			x(performance.Analyze)
		case "safety":
			x(safety.Analyze)
		case "style":
			x(style.Analyze)
		default:
			glog.Errorf("unknown rule name: %s", rule.Name)
		}
	}

	return paraTaskRunner.CollectResultsAndErrors()
}
