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

// Package analyzerinterface holds the plumbing between the command line
// driver and the analysis library: workspace traversal, check_rules
// parsing, line counting, and result post-processing.
package analyzerinterface

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/hhatto/gocloc"
	"naive.systems/firmcheck/analyzer/checkrule"
	"naive.systems/firmcheck/analyzer/results"
	"naive.systems/firmcheck/cruleslib/filter"
)

// sourceExtensions are the firmware source suffixes the walker picks up.
var sourceExtensions = map[string]bool{
	".ino": true,
	".c":   true,
	".cpp": true,
	".cc":  true,
	".h":   true,
}

// CountLangs are the gocloc language names matching sourceExtensions.
var CountLangs = []string{"C", "C++", "C Header", "C++ Header", "Arduino Sketch"}

func CreateResultDir(resultsDir string) error {
	dir, err := os.Stat(resultsDir)
	if err != nil {
		if os.IsNotExist(err) {
			err = os.MkdirAll(resultsDir, os.ModePerm)
			return err
		} else {
			return err
		}
	}

	if !dir.IsDir() {
		// a file exists instead of dir
		return os.ErrExist
	}

	return nil
}

func CreateLogDir(logDir string) error {
	return os.MkdirAll(logDir, os.ModePerm)
}

// ListSourceFiles walks srcdir and returns every firmware source file not
// excluded by an ignore_dir pattern, in lexical walk order.
func ListSourceFiles(srcdir string, ignoreDirPatterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(srcdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		matched, err := filter.MatchIgnoreDirPatterns(ignoreDirPatterns, path)
		if err != nil {
			glog.Error(err)
			return nil
		}
		if !matched {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func CountLinesUnderDir(workingDirs []string, countLangs []string, ignoreDirPatterns []string) (int, error) {
	clocOpts := gocloc.NewClocOptions()
	languages := gocloc.NewDefinedLanguages()
	for _, lang := range countLangs {
		if _, exists := languages.Langs[lang]; exists {
			clocOpts.IncludeLangs[lang] = struct{}{}
		}
	}
	processor := gocloc.NewProcessor(languages, clocOpts)
	result, err := processor.Analyze(workingDirs)
	if err != nil {
		glog.Errorf("gocloc fail: %v", err)
		return 0, err
	}
	sum := 0
	for _, file := range result.Files {
		matched, err := filter.MatchIgnoreDirPatterns(ignoreDirPatterns, file.Name)
		if err != nil {
			glog.Error(err)
			continue
		}
		if matched {
			continue
		}
		sum += int(file.Code)
	}

	return sum, nil
}

func FilterCheckRules(checkrules []checkrule.CheckRule, prefix string) []checkrule.CheckRule {
	var returnCheckRules []checkrule.CheckRule
	for _, rule := range checkrules {
		if strings.HasPrefix(rule.Name, prefix) {
			returnCheckRules = append(returnCheckRules, rule)
		}
	}
	return returnCheckRules
}

func ReadCheckRules(checkRulesPath string) ([]checkrule.CheckRule, error) {
	glog.Info("checkRulesPath ", checkRulesPath)
	checkRulesFile, err := os.Open(checkRulesPath)
	if err != nil {
		return nil, err
	}
	defer checkRulesFile.Close()

	scanner := bufio.NewScanner(checkRulesFile)
	checkRules := make([]checkrule.CheckRule, 0)
	logCheckRules := []string{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		ruleName := parts[0]
		jsonOptions := "{}"
		if len(parts) > 1 {
			jsonOptions = parts[1]
		}

		checkRule, err := checkrule.MakeCheckRule(ruleName, jsonOptions)
		if err != nil {
			return nil, err
		}
		logCheckRules = append(logCheckRules, line)
		checkRules = append(checkRules, *checkRule)
	}

	err = scanner.Err()
	if err != nil {
		return nil, err
	}
	glog.Infof("check_rules content:\n%s", strings.Join(logCheckRules, "\n"))
	return checkRules, nil
}

func AddID(allResults *results.ResultsList) {
	for i := 0; i < len(allResults.Results); i++ {
		id, err := uuid.NewRandom()
		if err != nil {
			// Reports without ids are still valid, consumers key on
			// path and line when the id is empty.
			glog.Warningf("uuid.NewRandom: %v", err)
			continue
		}
		allResults.Results[i].Id = id.String()
	}
}
