package workload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Suite file entries pick one of two observation sources.
const (
	sourceWall   = "wall"
	sourceStdout = "stdout"
)

type suiteFile struct {
	Workloads []suiteEntry `yaml:"workloads"`
}

type suiteEntry struct {
	Name          string   `yaml:"name"`
	Unit          string   `yaml:"unit"`
	LowerIsBetter *bool    `yaml:"lower_is_better"`
	Source        string   `yaml:"source"`
	Args          []string `yaml:"args"`
}

// LoadSuite reads a YAML suite file and returns the workload
// definitions in file order. Entries default to source "wall"
// (harness-timed, unit ms) and lower_is_better true.
func LoadSuite(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}

	var file suiteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}

	if len(file.Workloads) == 0 {
		return nil, fmt.Errorf("suite %s defines no workloads", path)
	}

	defs := make([]Definition, 0, len(file.Workloads))
	seen := make(map[string]bool, len(file.Workloads))

	for i, entry := range file.Workloads {
		if entry.Name == "" {
			return nil, fmt.Errorf("suite %s: workload %d has no name", path, i)
		}

		if seen[entry.Name] {
			return nil, fmt.Errorf(
				"suite %s: duplicate workload name %q", path, entry.Name,
			)
		}

		seen[entry.Name] = true

		lower := true
		if entry.LowerIsBetter != nil {
			lower = *entry.LowerIsBetter
		}

		switch entry.Source {
		case "", sourceWall:
			defs = append(defs, WallClock(entry.Name, entry.Args...))

		case sourceStdout:
			defs = append(defs, Reported(
				entry.Name, entry.Unit, lower, entry.Args...,
			))

		default:
			return nil, fmt.Errorf(
				"suite %s: workload %q: unknown source %q (want %q or %q)",
				path, entry.Name, entry.Source, sourceWall, sourceStdout,
			)
		}
	}

	return defs, nil
}
