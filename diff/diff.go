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

// Package diff implements incremental analysis: given a unified diff, it
// restricts a results list to the files and lines the diff touches, so a
// regeneration run only reports issues in regenerated code.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"naive.systems/firmcheck/analyzer/results"
)

type Hunk struct {
	OldPos, OldLines, NewPos, NewLines int
}

type File struct {
	NewName string
	OldName string
	Hunks   []*Hunk
}

type Patch struct {
	Files []*File
}

var hunkRE = regexp.MustCompile(`@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse reads a unified diff. Only "--- ", "+++ " and "@@ -" lines carry
// state, everything else is ignored. Added files have OldName empty,
// deleted files have NewName empty.
func Parse(diff string) (*Patch, error) {
	lines := strings.Split(diff, "\n")
	var p Patch
	var f *File
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "--- "):
			f = &File{}
			if line == "--- /dev/null" {
				f.OldName = ""
			} else if strings.HasPrefix(line, "--- a/") {
				f.OldName = strings.TrimPrefix(line, "--- a/")
			} else {
				return nil, fmt.Errorf("invalid line %d '%s'", i, line)
			}
			p.Files = append(p.Files, f)
		case strings.HasPrefix(line, "+++ "):
			if f == nil || len(f.Hunks) > 0 {
				return nil, fmt.Errorf("unexpected line %d '%s'", i, line)
			}
			if line == "+++ /dev/null" {
				f.NewName = ""
			} else if strings.HasPrefix(line, "+++ b/") {
				f.NewName = strings.TrimPrefix(line, "+++ b/")
			} else {
				return nil, fmt.Errorf("invalid line %d '%s'", i, line)
			}
		case strings.HasPrefix(line, "@@ -"):
			if f == nil {
				return nil, fmt.Errorf("hunk before file header at line %d '%s'", i, line)
			}
			hunk, err := parseHunk(line)
			if err != nil {
				return nil, err
			}
			f.Hunks = append(f.Hunks, hunk)
		}
	}
	return &p, nil
}

func parseHunk(line string) (*Hunk, error) {
	match := hunkRE.FindStringSubmatch(line)
	if match == nil {
		return nil, fmt.Errorf("could not extract hunk info from line '%s'", line)
	}
	nums := [4]int{0, 1, 0, 1}
	for i, s := range match[1:] {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("bad number in hunk header '%s': %v", line, err)
		}
		nums[i] = n
	}
	return &Hunk{nums[0], nums[1], nums[2], nums[3]}, nil
}

// Covers reports whether the patch touches the given line of path. Paths
// are compared by suffix so that absolute result paths match the
// repository-relative names in the diff.
func (p *Patch) Covers(path string, line int32) bool {
	for _, f := range p.Files {
		if f.NewName == "" || !strings.HasSuffix(path, f.NewName) {
			continue
		}
		// A result without a line number counts as covered once the
		// file itself changed.
		if line == 0 {
			return true
		}
		for _, h := range f.Hunks {
			if int(line) >= h.NewPos && int(line) < h.NewPos+h.NewLines {
				return true
			}
		}
	}
	return false
}

// FilterResults keeps only the results the patch covers.
func FilterResults(allResults *results.ResultsList, p *Patch) *results.ResultsList {
	filtered := &results.ResultsList{}
	for _, r := range allResults.Results {
		if p.Covers(r.Path, r.LineNumber) {
			filtered.Results = append(filtered.Results, r)
		}
	}
	return filtered
}
