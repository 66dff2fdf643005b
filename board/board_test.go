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

package board

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestResolveKnownBoards(t *testing.T) {
	for _, testCase := range [...]struct {
		id         string
		totalRAMKB int
		isRealtime bool
	}{
		{id: "esp32dev", totalRAMKB: 520, isRealtime: false},
		{id: "esp32s3", totalRAMKB: 1507, isRealtime: false},
		{id: "esp32c3", totalRAMKB: 400, isRealtime: true},
	} {
		t.Run(testCase.id, func(t *testing.T) {
			p := Resolve(testCase.id)
			if p.Id != testCase.id {
				t.Errorf("Resolve(%s).Id = %s", testCase.id, p.Id)
			}
			if p.TotalRAMKB != testCase.totalRAMKB {
				t.Errorf("Resolve(%s).TotalRAMKB = %d, expected %d", testCase.id, p.TotalRAMKB, testCase.totalRAMKB)
			}
			if p.IsRealtime != testCase.isRealtime {
				t.Errorf("Resolve(%s).IsRealtime = %v", testCase.id, p.IsRealtime)
			}
		})
	}
}

func TestResolveUnknownBoardFallsBack(t *testing.T) {
	unknown := Resolve("some-future-board")
	fallback := Resolve(DefaultBoard)
	if !reflect.DeepEqual(unknown, fallback) {
		t.Errorf("unknown board resolved to %+v, expected default %+v", unknown, fallback)
	}
}

func TestResolveReturnsCopies(t *testing.T) {
	first := Resolve("esp32c3")
	first.TotalRAMKB = 1
	second := Resolve("esp32c3")
	if second.TotalRAMKB != 400 {
		t.Error("mutating a resolved profile leaked into the builtin table")
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.yaml")
	content := `
- id: esp32h2
  name: ESP32-H2
  platform: espressif32
  framework: arduino
  total_ram_kb: 320
  system_reserved_kb: 64
  flash_size_mb: 4
  is_realtime: true
  performance_critical: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	registry, err := LoadOverlay(path)
	if err != nil {
		t.Fatalf("LoadOverlay: %v", err)
	}
	p := registry.Resolve("esp32h2")
	if p.Name != "ESP32-H2" || p.TotalRAMKB != 320 || !p.IsRealtime {
		t.Errorf("unexpected overlay profile: %+v", p)
	}
	// builtin table must be untouched
	if len(Known()) != 3 {
		t.Errorf("builtin table mutated by overlay: %v", Known())
	}
	if registry.Resolve("esp32dev").TotalRAMKB != 520 {
		t.Error("overlay registry lost builtin profile")
	}
}

func TestLoadOverlayRejectsMissingRAM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.yaml")
	if err := os.WriteFile(path, []byte("- id: badboard\n  name: Bad\n"), 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	if _, err := LoadOverlay(path); err == nil {
		t.Error("expected error for overlay board without total_ram_kb")
	}
}
