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
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"naive.systems/firmcheck/analyzer/checkrule"
)

type CheckOptions struct {
	JsonOption         checkrule.JSONOption
	EnvOption          EnvOptions
	RuleSpecificOption RuleSpecificOptions
}

type EnvOptions struct {
	// ResultsDir is where metadata and result files go. Empty means the
	// analysis is running as a pure library call and must not touch disk.
	ResultsDir    string
	LogDir        string
	CheckProgress bool
	Debug         bool
	LimitMemory   bool
	AvailMemRatio float64
	NumWorkers    int32
	Lang          string
}

type RuleSpecificOptions struct {
	RuleSpecificResultDir string
}

// NewRuleSpecificOptions prepares the per-rule scratch directory. When
// generalResultsDir is empty no directory is created: rule analyzers are pure
// functions over the code text and only the CLI persists anything.
func NewRuleSpecificOptions(ruleName string, generalResultsDir string) *RuleSpecificOptions {
	options := &RuleSpecificOptions{}
	if generalResultsDir == "" {
		return options
	}

	ruleset, rule, found := strings.Cut(ruleName, "/")
	if !found {
		rule = ruleName
	}
	tmpResultsDir := filepath.Join(generalResultsDir, "tmp", ruleset)
	err := os.MkdirAll(tmpResultsDir, os.ModePerm)
	if err != nil {
		glog.Fatalf("failed to create tmp dir: %v", err)
	}
	resultsDir, err := os.MkdirTemp(tmpResultsDir, rule+"-*")
	if err != nil {
		glog.Fatalf("failed to create result dir: %v", err)
	}
	options.RuleSpecificResultDir = resultsDir

	return options
}

// NewEnvOptions builds the environment shared by every rule of one analysis.
func NewEnvOptions(resultsDir, logDir string, checkProgress, debug bool, numWorkers int32, lang string) *EnvOptions {
	return &EnvOptions{
		ResultsDir:    resultsDir,
		LogDir:        logDir,
		CheckProgress: checkProgress,
		Debug:         debug,
		NumWorkers:    numWorkers,
		Lang:          lang,
	}
}

func MakeCheckOptions(jsonOption *checkrule.JSONOption, envOption *EnvOptions, ruleOption *RuleSpecificOptions) CheckOptions {
	return CheckOptions{
		JsonOption:         *jsonOption,
		EnvOption:          *envOption,
		RuleSpecificOption: *ruleOption,
	}
}
