package ldtest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/microservices-demo/e2e-contract-tests/framework"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/microservices-demo/e2e-contract-tests/framework/ldtest"

var labelPattern = regexp.MustCompile(`^([A-Z][A-Za-z ]*):[ ]*\t`)

// TestConfiguration contains the parameters for a test run.
type TestConfiguration struct {
	// Filter, if non-nil, decides which tests to run. Tests that are filtered out are
	// reported as skipped.
	Filter Filter

	// TestLogger receives notifications about test progress. If nil, nothing is logged.
	TestLogger TestLogger

	// Context is an arbitrary value that domain-specific test code can retrieve with T.Context.
	Context interface{}

	// Tracer is used to start one span per test. If nil, the global OpenTelemetry tracer
	// provider is used.
	Tracer trace.Tracer
}

type environment struct {
	config  TestConfiguration
	tracer  trace.Tracer
	results Results
}

// T represents a test scope. It is similar to Go's *testing.T, but works outside of the Go
// test runner. It implements require.TestingT, so assertions from testify's assert and
// require packages can be used with it.
type T struct {
	env         *environment
	id          TestID
	ctx         context.Context
	debugLogger framework.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	subtests    int
}

// Run executes a top-level test action and returns the accumulated results of it and of all
// of its subtests.
func Run(config TestConfiguration, action func(*T)) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	env := &environment{
		config: config,
		tracer: tracer,
	}
	t := &T{env: env, ctx: context.Background()}
	t.run(action)
	return env.results
}

func (t *T) run(action func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			if t.skipped {
				t.recordResult()
				return
			}
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.errors = append(t.errors, addError)
				t.env.config.TestLogger.TestError(t.id, addError)
			}
		}
		t.recordResult()
	}()

	action(t)
}

func (t *T) recordResult() {
	if len(t.id.Path) == 0 && !t.failed {
		return // the root scope only matters if something went wrong outside of any subtest
	}
	result := TestResult{TestID: t.id, Errors: t.errors, Skipped: t.skipped, Group: t.subtests > 0}
	t.env.results.Tests = append(t.env.results.Tests, result)
	if t.failed {
		t.env.results.Failures = append(t.env.results.Failures, result)
	}
}

// ID returns the full identifier of this test.
func (t *T) ID() TestID {
	return t.id
}

// Context returns the value that was passed in TestConfiguration.Context.
func (t *T) Context() interface{} {
	return t.env.config.Context
}

// RequestContext returns a context.Context that carries this test's trace span. Anything
// that makes network calls on behalf of the test should use it.
func (t *T) RequestContext() context.Context {
	return t.ctx
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	t.subtests++

	t.env.config.TestLogger.TestStarted(id)
	if t.env.config.Filter != nil && !t.env.config.Filter(id) {
		t.env.results.Tests = append(t.env.results.Tests, TestResult{TestID: id, Skipped: true})
		t.env.config.TestLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}

	ctx, span := t.env.tracer.Start(t.ctx, id.String(),
		trace.WithAttributes(attribute.String("test.id", id.String())))
	t1 := &T{
		env: t.env,
		id:  id,
		ctx: ctx,
	}
	t1.run(action)

	switch {
	case t1.skipped:
		span.SetAttributes(attribute.Bool("test.skipped", true))
		t.env.config.TestLogger.TestSkipped(id, t1.skipReason)
	case t1.failed:
		span.SetStatus(codes.Error, firstErrorMessage(t1.errors))
		t.env.config.TestLogger.TestFinished(id, true, t1.debugLogger.Output())
	default:
		span.SetStatus(codes.Ok, "")
		t.env.config.TestLogger.TestFinished(id, false, t1.debugLogger.Output())
	}
	span.End()
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := reformatError(fmt.Errorf(format, args...))
	t.errors = append(t.errors, err)
	t.env.config.TestLogger.TestError(t.id, err)
}

// FailNow causes the test to immediately exit. The methods in the require package call it.
func (t *T) FailNow() {
	panic(t)
}

// Failed returns true if the test has failed so far.
func (t *T) Failed() bool {
	return t.failed
}

// Skip causes the test to immediately exit and be reported as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is equivalent to Skip, but also provides a reason for the test logger.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug writes a message to the test's debug output, which the test logger may show at the
// end of the test.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger that writes to the test's debug output.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

func firstErrorMessage(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	return strings.SplitN(errs[0].Error(), "\n", 2)[0]
}

// reformatError drops the "Error Trace" section that testify adds to assertion failures and
// removes the column alignment of the remaining lines.
func reformatError(err error) error {
	lines := strings.Split(strings.TrimLeft(err.Error(), "\n"), "\n")
	out := make([]string, 0, len(lines))
	inTrace := false
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, "\t")
		if strings.HasPrefix(trimmed, "Error Trace:") {
			inTrace = true
			continue
		}
		if strings.HasPrefix(trimmed, " ") { // continuation of the previous label
			if inTrace {
				continue
			}
			out = append(out, "  "+strings.TrimLeft(trimmed, " \t"))
			continue
		}
		inTrace = false
		out = append(out, labelPattern.ReplaceAllString(trimmed, "$1: "))
	}
	return errors.New(strings.Join(out, "\n"))
}
