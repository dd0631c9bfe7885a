// Package sysinfo gathers the host details printed in the report
// banner, so a saved comparison records what machine produced it.
package sysinfo

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Info describes the host a comparison ran on.
type Info struct {
	Hostname      string `json:"hostname"`
	Kernel        string `json:"kernel,omitempty"`
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	GoVersion     string `json:"go_version"`
	CPUModel      string `json:"cpu_model"`
	LogicalCPUs   int    `json:"logical_cpus"`
	MemoryTotalMB int64  `json:"memory_total_mb"`
}

// Collect returns a best-effort snapshot of the current host. Fields
// that cannot be read (non-Linux hosts, restricted /proc) are left
// zero rather than failing the run.
func Collect() Info {
	hostname, _ := os.Hostname()

	return Info{
		Hostname:      hostname,
		Kernel:        firstLine("/proc/sys/kernel/osrelease"),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		GoVersion:     runtime.Version(),
		CPUModel:      cpuModel(),
		LogicalCPUs:   runtime.NumCPU(),
		MemoryTotalMB: memTotalMB(),
	}
}

func cpuModel() string {
	v := procField("/proc/cpuinfo", "model name")
	if v == "" {
		return "unknown"
	}

	return v
}

func memTotalMB() int64 {
	v := procField("/proc/meminfo", "MemTotal")
	if v == "" {
		return 0
	}

	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 0
	}

	kb, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0
	}

	return kb / 1024
}

// procField returns the value of the first "key: value" line in a
// /proc file whose key matches prefix.
func procField(path, prefix string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		return strings.TrimSpace(value)
	}

	return ""
}

func firstLine(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	line, _, _ := strings.Cut(string(data), "\n")

	return strings.TrimSpace(line)
}
