package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"suimu/internal/services/runner"
)

// Call is one invocation seen by FakeExecutor.
type Call struct {
	Binary string
	Args   []string
}

// FakeExecutor implements runner.Executor without launching processes. A
// successful call creates the file the tool would have written: the path
// after "-o" for the downloader, otherwise the last argument.
type FakeExecutor struct {
	mu    sync.Mutex
	calls []Call

	// FailWhen marks a call as failed (exit 1) when any argument contains
	// one of these substrings.
	FailWhen []string
	// Err, when set, is returned from every call.
	Err error
}

// Run records the call and simulates the tool.
func (f *FakeExecutor) Run(ctx context.Context, binary string, args []string) (runner.Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Binary: binary, Args: slices.Clone(args)})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return runner.Outcome{}, err
	}
	if f.Err != nil {
		return runner.Outcome{}, f.Err
	}
	for _, arg := range args {
		for _, needle := range f.FailWhen {
			if needle != "" && strings.Contains(arg, needle) {
				return runner.Outcome{ExitCode: 1, Stderr: "ERROR: " + needle + " unavailable\n"}, nil
			}
		}
	}
	if target := producedPath(args); target != "" {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return runner.Outcome{}, err
		}
		if err := os.WriteFile(target, []byte("media"), 0o644); err != nil {
			return runner.Outcome{}, err
		}
	}
	return runner.Outcome{}, nil
}

// Calls returns a copy of the recorded invocations.
func (f *FakeExecutor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CountBinary returns how many calls targeted binary.
func (f *FakeExecutor) CountBinary(binary string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Binary == binary {
			n++
		}
	}
	return n
}

func producedPath(args []string) string {
	if i := slices.Index(args, "-o"); i >= 0 && i+1 < len(args) {
		return args[i+1]
	}
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}
