package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single trial when the sampler config does
// not say otherwise.
const DefaultTimeout = 60 * time.Second

// Runner launches one candidate binary for individual trials.
type Runner struct {
	Name       string
	BinaryPath string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewRunner creates a Runner for the named candidate. A timeout of
// zero means DefaultTimeout.
func NewRunner(
	name, binaryPath string,
	timeout time.Duration,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Name:       name,
		BinaryPath: binaryPath,
		Timeout:    timeout,
		Logger:     logger.With(slog.String("candidate", name)),
	}
}

// Run invokes the candidate with the given arguments and blocks until
// it exits or the timeout expires, at which point the process is
// killed and the result is marked TimedOut. Duration is wall-clock
// from process start through exit or kill, measured on the monotonic
// clock; process startup and teardown cost is deliberately included.
//
// A non-zero exit is not an error here: the result carries the exit
// code and whatever output was captured, since a failing process may
// still print a usable number. The returned error is reserved for
// trials that could not be started at all.
func (r *Runner) Run(ctx context.Context, args []string) (TrialResult, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// A killed candidate can leave a child holding the output pipes;
	// don't let that stall the run past the kill.
	cmd.WaitDelay = time.Second

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	result := TrialResult{
		DurationMs: float64(elapsed) / float64(time.Millisecond),
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}

	switch {
	case runErr == nil:

	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.ExitCode = -1

	case errors.Is(runErr, exec.ErrWaitDelay):
		// Exited fine but an orphaned child kept the pipes open;
		// the captured output may be truncated.

	default:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("start %s: %w", r.BinaryPath, runErr)
		}

		result.ExitCode = exitErr.ExitCode()
	}

	r.Logger.Debug("trial finished",
		slog.Float64("duration_ms", result.DurationMs),
		slog.Int("exit_code", result.ExitCode),
		slog.Bool("timed_out", result.TimedOut),
	)

	return result, nil
}

// ValidateBinary checks that path names an existing, regular,
// executable file. It is the upfront gate before any trial runs.
func ValidateBinary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("candidate binary %s: %w", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("candidate binary %s is a directory", path)
	}

	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("candidate binary %s is not executable", path)
	}

	return nil
}
