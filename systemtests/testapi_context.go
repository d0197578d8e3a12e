package systemtests

import (
	"context"
	"errors"
	"fmt"

	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"

	"github.com/stretchr/testify/require"
)

type SystemTestContext struct {
	harness *harness.TestHarness
}

func requireContext(t *ldtest.T) SystemTestContext {
	if c, ok := t.Context().(SystemTestContext); ok {
		return c
	}
	panic("SystemTestContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}

// newRequestContext returns a context for all of the requests made by one test: it carries the
// test's trace span and a fresh correlation ID.
func newRequestContext(t *ldtest.T) context.Context {
	correlationID := harness.NewCorrelationID()
	t.Debug("Correlation-ID: %s", correlationID)
	return harness.ContextWithCorrelationID(t.RequestContext(), correlationID)
}

// requireAnswered fails the test if a request to service got no HTTP response at all. Running
// out of time is reported separately from other transport failures.
func requireAnswered(t *ldtest.T, service, request string, err error) {
	if err == nil {
		return
	}
	var reqErr *harness.RequestError
	if errors.As(err, &reqErr) && reqErr.Timeout() {
		require.Fail(t, fmt.Sprintf("%s did not answer within %s (%s %s)",
			service, requireContext(t).harness.RequestTimeout(), reqErr.Method, reqErr.URL))
	}
	require.Fail(t, fmt.Sprintf("%s %s failed: %s", service, request, err))
}
