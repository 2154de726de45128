// Package maven invokes the project's Maven build scoped to a single
// test class. It is the external compiler/runner collaborator of the
// validation loop: testsmith only depends on the exit status and the
// combined textual output.
package maven

import (
	"context"
	"time"

	"github.com/joss/testsmith/internal/exec"
	"github.com/joss/testsmith/internal/logging"
)

const (
	// CompileTimeout bounds mvn test-compile.
	CompileTimeout = 120 * time.Second

	// TestTimeout bounds mvn test, which includes Spring context
	// startup and so gets a longer ceiling.
	TestTimeout = 300 * time.Second
)

// Result is the outcome of one Maven invocation.
type Result struct {
	ExitCode int
	Output   string
	TimedOut bool
}

// OK reports whether Maven exited cleanly.
func (r Result) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Invoker runs Maven goals in a project checkout.
type Invoker struct {
	projectRoot string
	runner      exec.Runner
	log         *logging.Logger
}

// New creates an invoker rooted at the Maven project directory.
func New(projectRoot string, runner exec.Runner) *Invoker {
	return &Invoker{
		projectRoot: projectRoot,
		runner:      runner,
		log:         logging.New("maven"),
	}
}

// CompileTest compiles only the named test class.
func (m *Invoker) CompileTest(ctx context.Context, testClass string) Result {
	return m.invoke(ctx, CompileTimeout, testClass, "test-compile", "-q", "-Dtest="+testClass)
}

// RunTest executes only the named test class.
func (m *Invoker) RunTest(ctx context.Context, testClass string) Result {
	return m.invoke(ctx, TestTimeout, testClass, "test", "-q", "-Dtest="+testClass)
}

func (m *Invoker) invoke(ctx context.Context, timeout time.Duration, testClass string, args ...string) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := m.runner.RunInDir(ctx, m.projectRoot, "mvn", args...)
	res := Result{
		ExitCode: exec.ExitCode(err),
		Output:   string(out),
		TimedOut: ctx.Err() == context.DeadlineExceeded,
	}

	m.log.TimedEvent("mvn_"+args[0], start, map[string]any{
		"test":      testClass,
		"exit_code": res.ExitCode,
		"timed_out": res.TimedOut,
	})
	return res
}
