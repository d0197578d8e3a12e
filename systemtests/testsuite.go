package systemtests

import (
	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"

	"go.opentelemetry.io/otel/trace"
)

func RunTestSuite(
	testHarness *harness.TestHarness,
	filter ldtest.Filter,
	testLogger ldtest.TestLogger,
	tracer trace.Tracer,
) ldtest.Results {
	config := ldtest.TestConfiguration{
		Filter:     filter,
		TestLogger: testLogger,
		Context:    SystemTestContext{harness: testHarness},
		Tracer:     tracer,
	}
	return ldtest.Run(config, func(t *ldtest.T) {
		t.Run("health", DoHealthTests)
		t.Run("order flow", DoOrderFlowTests)
	})
}
