package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"suimu/internal/logging"
	"suimu/internal/services"
)

// ErrLaunch marks a binary that could not be started.
var ErrLaunch = fmt.Errorf("%w: launch failed", services.ErrConfiguration)

// Outcome captures a completed process invocation.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Success reports a zero exit that did not time out.
func (o Outcome) Success() bool {
	return o.ExitCode == 0 && !o.TimedOut
}

// Summary returns the last non-empty stderr line, or the exit status.
func (o Outcome) Summary() string {
	if o.TimedOut {
		return "timed out"
	}
	lines := strings.Split(strings.TrimSpace(o.Stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return fmt.Sprintf("exit status %d", o.ExitCode)
}

// Err classifies a failed outcome: ErrTimeout when the runner's deadline
// fired, ErrExternalTool for a non-zero exit. It returns nil on success.
func (o Outcome) Err(binary string) error {
	switch {
	case o.Success():
		return nil
	case o.TimedOut:
		return services.Wrap(services.ErrTimeout, "run", binary, o.Duration.String(), nil)
	default:
		return services.Wrap(services.ErrExternalTool, "run", binary, o.Summary(), nil)
	}
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Outcome, error)
}

// CommandExecutor executes commands using os/exec.
type CommandExecutor struct{}

func (CommandExecutor) Run(ctx context.Context, binary string, args []string) (Outcome, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	outcome := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(started),
	}
	if err == nil {
		return outcome, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		outcome.ExitCode = -1
		return outcome, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		return outcome, nil
	}
	return outcome, fmt.Errorf("%w: %s: %w", ErrLaunch, binary, err)
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger sets the logger used for command output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner applies an optional per-call timeout and logs every invocation.
type Runner struct {
	exec    Executor
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs a Runner. A zero timeout disables the deadline.
func New(timeout time.Duration, opts ...Option) *Runner {
	r := &Runner{
		exec:    CommandExecutor{},
		timeout: timeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run invokes binary. Expiry of the runner's own timeout is reported as a
// failed Outcome; cancellation of ctx is returned as an error.
func (r *Runner) Run(ctx context.Context, binary string, args []string) (Outcome, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("running command",
		logging.String("binary", binary),
		logging.String("args", strings.Join(args, " ")),
	)

	outcome, err := r.exec.Run(runCtx, binary, args)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		outcome.TimedOut = true
		if outcome.ExitCode == 0 {
			outcome.ExitCode = -1
		}
		err = nil
	}
	if err != nil {
		return outcome, err
	}

	if out := strings.TrimSpace(outcome.Stdout); out != "" {
		logger.Debug("command stdout", logging.String("binary", binary), logging.String("stdout", out))
	}
	if out := strings.TrimSpace(outcome.Stderr); out != "" {
		logger.Debug("command stderr", logging.String("binary", binary), logging.String("stderr", out))
	}
	if !outcome.Success() {
		logger.Debug("command failed",
			logging.Error(outcome.Err(binary)),
			logging.String("binary", binary),
			logging.Int("exit_code", outcome.ExitCode),
			logging.Bool("timed_out", outcome.TimedOut),
			logging.Duration("duration", outcome.Duration),
		)
	}
	return outcome, nil
}
