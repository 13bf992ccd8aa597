package cmdrunner

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one invocation seen by MockRunner.
type Call struct {
	Command  Command
	Detached bool
	LogPath  string
}

// MockRunner is a thread-safe test double for Runner. Unregistered
// foreground commands fail as if the program were not installed.
type MockRunner struct {
	mu        sync.RWMutex
	results   map[string]Result
	errors    map[string]error
	hooks     map[string]func()
	nextPID   int
	calls     []Call
	detachErr map[string]error
}

func NewMockRunner() *MockRunner {
	return &MockRunner{
		results:   make(map[string]Result),
		errors:    make(map[string]error),
		hooks:     make(map[string]func()),
		detachErr: make(map[string]error),
		nextPID:   4000,
	}
}

// AddResult registers the result returned for name+args.
func (m *MockRunner) AddResult(name string, args []string, result Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(name, args)] = result
}

// AddOutput registers a successful run printing stdout.
func (m *MockRunner) AddOutput(name string, args []string, stdout string) {
	m.AddResult(name, args, Result{Stdout: stdout})
}

// AddError registers a command that fails to start.
func (m *MockRunner) AddError(name string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(name, args)] = err
}

// OnRun registers fn to be called whenever name+args runs, foreground or detached.
func (m *MockRunner) OnRun(name string, args []string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[buildKey(name, args)] = fn
}

// AddDetachError makes Detach fail for name+args.
func (m *MockRunner) AddDetachError(name string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachErr[buildKey(name, args)] = err
}

func (m *MockRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	key := buildKey(cmd.Name, cmd.Args)

	m.mu.Lock()
	m.calls = append(m.calls, Call{Command: cmd})
	hook := m.hooks[key]
	err, hasErr := m.errors[key]
	result, hasResult := m.results[key]
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if hasErr {
		return Result{}, err
	}
	if hasResult {
		return result, nil
	}
	return Result{}, fmt.Errorf("exec: %q: executable file not found in $PATH", cmd.Name)
}

// Detach succeeds unless AddDetachError registered a failure.
func (m *MockRunner) Detach(cmd Command, logPath string) (int, error) {
	key := buildKey(cmd.Name, cmd.Args)

	m.mu.Lock()
	m.calls = append(m.calls, Call{Command: cmd, Detached: true, LogPath: logPath})
	hook := m.hooks[key]
	err := m.detachErr[key]
	m.nextPID++
	pid := m.nextPID
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// Calls returns a copy of every recorded invocation.
func (m *MockRunner) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsTo returns the recorded invocations of the named program.
func (m *MockRunner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Command.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func buildKey(name string, args []string) string {
	return name + ":" + strings.Join(args, ":")
}

var _ Runner = (*MockRunner)(nil)
