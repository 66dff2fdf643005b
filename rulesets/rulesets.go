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

// Package rulesets maps rule identifiers to display names and renders
// annotated source snippets for reported results.
package rulesets

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

var RULESETS = map[string]string{
	"Firmware Quality": "firmware",
}

// to fix the sequence in RULESETS map
var RULESET_NAMES = []string{"Firmware Quality"}

var ruleDisplayNames = map[string]string{
	"correctness": "Correctness",
	"memsafety":   "Memory Safety",
	"performance": "Performance",
	"safety":      "Safety",
	"style":       "Style",
}

// GetRuleFullName formats a ruleset/rule pair for human output, for
// example 'Firmware Quality: Memory Safety'. Unknown rules fall back to
// the raw identifier.
func GetRuleFullName(ruleset, ruleId string) string {
	displayRuleset := ruleset
	for name, id := range RULESETS {
		if id == ruleset {
			displayRuleset = name
			break
		}
	}
	displayRule, ok := ruleDisplayNames[ruleId]
	if !ok {
		displayRule = ruleId
	}
	return fmt.Sprintf("%s: %s", displayRuleset, displayRule)
}

func convertCharset(b []byte, charset string) string {
	/*
		The function aims at detecting the encoding and convert it to UTF-8,
		but charset.DetermineEncoding() may not always able to detect the source
		text right.
	*/
	byteReader := bytes.NewReader(b)
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		glog.Warning("ianaindex.MIME.Encoding err, the charset is considered as UTF-8 by default")
		return string(b)
	}
	if e == nil {
		glog.Warning("charset not found, the charset is considered as UTF-8 by default")
		return string(b)
	}
	reader := transform.NewReader(byteReader, e.NewDecoder())
	bytes, err := io.ReadAll(reader)
	if err != nil {
		glog.Warning("ioutil.ReadAll err, the charset is considered as UTF-8 by default")
		return string(b)
	}
	return string(bytes)
}

// GetCode renders the reported line with two lines of context on each
// side, marking the reported line with '>'.
func GetCode(path string, lineNumber int32, charset string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lower := lineNumber - 2
	upper := lineNumber + 2
	var lineCount int32 = 0
	var output string = ""
	for scanner.Scan() {
		lineCount++
		if lineCount < lower {
			continue
		} else if lineCount > upper {
			break
		}
		var text string
		if charset == "utf8" {
			text = scanner.Text()
		} else {
			text = convertCharset(scanner.Bytes(), charset)
		}
		if lineCount == lineNumber {
			output = output + fmt.Sprintf("> %d| %s\n", lineCount, text)
		} else {
			output = output + fmt.Sprintf("%d| %s\n", lineCount, text)
		}
	}
	if err = scanner.Err(); err != nil {
		return "", err
	}
	return output, err
}
