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

// Package board holds the hardware constraint profiles the analysis is
// scored against. The builtin table is read-only after initialization, so
// concurrent analyses may resolve profiles without synchronization.
package board

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

type Profile struct {
	Id                  string `yaml:"id" json:"id"`
	Name                string `yaml:"name" json:"name"`
	Platform            string `yaml:"platform" json:"platform"`
	Framework           string `yaml:"framework" json:"framework"`
	TotalRAMKB          int    `yaml:"total_ram_kb" json:"total_ram_kb"`
	SystemReservedKB    int    `yaml:"system_reserved_kb" json:"system_reserved_kb"`
	FlashSizeMB         int    `yaml:"flash_size_mb" json:"flash_size_mb"`
	IsRealtime          bool   `yaml:"is_realtime" json:"is_realtime"`
	PerformanceCritical bool   `yaml:"performance_critical" json:"performance_critical"`
}

// DefaultBoard is what unknown identifiers resolve to. The caller may be
// scoring code for a board the registry does not enumerate yet, and a
// degraded but plausible answer beats an error.
const DefaultBoard = "esp32dev"

var builtin = map[string]Profile{
	"esp32dev": {
		Id:                  "esp32dev",
		Name:                "ESP32 DevKit V1",
		Platform:            "espressif32",
		Framework:           "arduino",
		TotalRAMKB:          520,
		SystemReservedKB:    100,
		FlashSizeMB:         4,
		IsRealtime:          false,
		PerformanceCritical: false,
	},
	"esp32s3": {
		Id:                  "esp32s3",
		Name:                "ESP32-S3",
		Platform:            "espressif32",
		Framework:           "arduino",
		TotalRAMKB:          1507,
		SystemReservedKB:    150,
		FlashSizeMB:         8,
		IsRealtime:          false,
		PerformanceCritical: true,
	},
	"esp32c3": {
		Id:                  "esp32c3",
		Name:                "ESP32-C3",
		Platform:            "espressif32",
		Framework:           "arduino",
		TotalRAMKB:          400,
		SystemReservedKB:    80,
		FlashSizeMB:         4,
		IsRealtime:          true,
		PerformanceCritical: true,
	},
}

// Resolve returns the profile for id, falling back to the default profile
// for unknown identifiers. It never fails.
func Resolve(id string) *Profile {
	if p, ok := builtin[id]; ok {
		return &p
	}
	p := builtin[DefaultBoard]
	return &p
}

// Known returns the builtin board identifiers in sorted order.
func Known() []string {
	ids := make([]string, 0, len(builtin))
	for id := range builtin {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Registry is a resolved board table: the builtin profiles, optionally
// extended by an overlay file. A Registry is immutable once constructed.
type Registry struct {
	profiles map[string]Profile
}

func Builtin() *Registry {
	profiles := make(map[string]Profile, len(builtin))
	for id, p := range builtin {
		profiles[id] = p
	}
	return &Registry{profiles: profiles}
}

// LoadOverlay reads extra board profiles from a YAML file and returns a new
// registry containing the builtin table plus the overlay entries. Overlay
// entries with a builtin id replace the builtin profile in the returned
// registry only; the builtin table itself is never mutated.
func LoadOverlay(path string) (*Registry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s): %v", path, err)
	}
	var overlay []Profile
	err = yaml.Unmarshal(content, &overlay)
	if err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s): %v", path, err)
	}
	registry := Builtin()
	for _, p := range overlay {
		if p.Id == "" {
			return nil, fmt.Errorf("board overlay %s: profile without id", path)
		}
		if p.TotalRAMKB <= 0 {
			return nil, fmt.Errorf("board overlay %s: board %s must declare total_ram_kb", path, p.Id)
		}
		registry.profiles[p.Id] = p
	}
	return registry, nil
}

func (r *Registry) Resolve(id string) *Profile {
	if p, ok := r.profiles[id]; ok {
		return &p
	}
	p := r.profiles[DefaultBoard]
	return &p
}

func (r *Registry) Known() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
