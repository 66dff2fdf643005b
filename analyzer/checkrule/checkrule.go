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

package checkrule

import (
	"encoding/json"
	"fmt"

	"github.com/golang/glog"
)

const emptyString = ""

type CheckRule struct {
	Name        string
	JSONOptions JSONOption
}

type JSONOption struct {
	CaseSensitive *bool `json:"case-sensitive,omitempty"`
	// MaxReportNum caps how many results one rule may emit in a single pass.
	MaxReportNum *int `json:"max-report-num,omitempty"`
	// Severity overrides the severity of every result the rule emits.
	Severity *string `json:"severity,omitempty"`
	// Board pins the rule to a board id regardless of the analysis target.
	Board *string `json:"board,omitempty"`
}

var validSeverities = map[string]bool{
	"critical": true,
	"high":     true,
	"medium":   true,
	"low":      true,
}

func verifySeverity(severity string) bool {
	_, ok := validSeverities[severity]
	return ok
}

func MakeCheckRule(name string, jsonOptions string) (*CheckRule, error) {
	checkRule := &CheckRule{}

	checkRule.Name = name
	err := json.Unmarshal([]byte(jsonOptions), &checkRule.JSONOptions)
	if err != nil {
		return nil, err
	}

	if checkRule.JSONOptions.Severity != nil && !verifySeverity(*checkRule.JSONOptions.Severity) {
		return nil, fmt.Errorf("invalid severity: %s", *checkRule.JSONOptions.Severity)
	}
	if checkRule.JSONOptions.MaxReportNum != nil && *checkRule.JSONOptions.MaxReportNum < 0 {
		return nil, fmt.Errorf("invalid max-report-num: %d", *checkRule.JSONOptions.MaxReportNum)
	}

	return checkRule, nil
}

func MakeCheckRuleWithoutError(name string, jsonOptions string) *CheckRule {
	checkRule, err := MakeCheckRule(name, jsonOptions)
	if err != nil {
		glog.Fatalf("can not make CheckRule without error: error: %v", err)
	}
	return checkRule
}

func (jsonOption *JSONOption) Update(newOption JSONOption) {
	if newOption.CaseSensitive != nil {
		jsonOption.CaseSensitive = newOption.CaseSensitive
	}
	if newOption.MaxReportNum != nil {
		jsonOption.MaxReportNum = newOption.MaxReportNum
	}
	if newOption.Severity != nil {
		jsonOption.Severity = newOption.Severity
	}
	if newOption.Board != nil {
		jsonOption.Board = newOption.Board
	}
}

func (jsonOption JSONOption) ToString() string {
	res, err := json.Marshal(jsonOption)
	if err != nil {
		glog.Errorf("failed to marshal json option: %v", jsonOption)
	}
	return string(res)
}

func UpdateOptions(checkRules []CheckRule, newOption JSONOption) *[]CheckRule {
	for idx := range checkRules {
		checkRules[idx].JSONOptions.Update(newOption)
	}
	return &checkRules
}
