package workload

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}

	return path
}

func TestLoadSuite(t *testing.T) {
	path := writeSuite(t, `
workloads:
  - name: startup
    args: ["--version"]
  - name: sort-1e6
    source: wall
    args: ["sort", "1000000"]
  - name: throughput
    source: stdout
    unit: ops/s
    lower_is_better: false
    args: ["bench", "--ops"]
`)

	defs, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite failed: %v", err)
	}

	if len(defs) != 3 {
		t.Fatalf("got %d workloads, want 3", len(defs))
	}

	// File order is preserved.
	if defs[0].Name != "startup" || defs[1].Name != "sort-1e6" ||
		defs[2].Name != "throughput" {
		t.Errorf("order = %s, %s, %s",
			defs[0].Name, defs[1].Name, defs[2].Name)
	}

	// Defaults: wall source, ms, lower is better.
	if defs[0].Unit != "ms" || !defs[0].LowerIsBetter {
		t.Errorf("defaults not applied: %+v", defs[0])
	}

	if defs[2].Unit != "ops/s" || defs[2].LowerIsBetter {
		t.Errorf("stdout entry = unit %q, lower %v",
			defs[2].Unit, defs[2].LowerIsBetter)
	}

	if len(defs[2].Args) != 2 || defs[2].Args[0] != "bench" {
		t.Errorf("args = %v", defs[2].Args)
	}
}

func TestLoadSuiteErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"no workloads", "workloads: []"},
		{"missing name", "workloads:\n  - args: [\"x\"]"},
		{
			"duplicate name",
			"workloads:\n  - name: a\n  - name: a",
		},
		{
			"unknown source",
			"workloads:\n  - name: a\n    source: stderr",
		},
		{"invalid yaml", "workloads: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSuite(t, tt.content)

			if _, err := LoadSuite(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSuiteMissingFile(t *testing.T) {
	if _, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
