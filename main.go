package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/microservices-demo/e2e-contract-tests/framework"
	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"
	"github.com/microservices-demo/e2e-contract-tests/framework/tracing"
	"github.com/microservices-demo/e2e-contract-tests/systemtests"

	"github.com/sirupsen/logrus"
)

const tracingShutdownTimeout = time.Second * 5

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var params commandParams
	if !params.Read(args) {
		return 1
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = framework.LoggerWithPrefix(newDebugLogger(), "[harness] ")
	}

	provider, err := tracing.NewProvider(context.Background(), params.otlpEndpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tracing setup error: %s\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			mainDebugLogger.Printf("Error shutting down tracing: %s", err)
		}
	}()

	testHarness, err := harness.NewTestHarness(
		harness.Config{
			GatewayBaseURL: params.gatewayURL,
			Services:       params.services.targets,
			RequestTimeout: params.timeout,
			StartupTimeout: params.startupTimeout,
		},
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Test harness error: %s\n", err)
		return 1
	}

	fmt.Println()
	ldtest.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := systemtests.RunTestSuite(testHarness, params.filters.AsFilter, testLogger, provider.Tracer())

	fmt.Println()
	ldtest.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun only the failed tests:")
		fmt.Println("  " + params.rerunFailedCommand(args[0], results))
		return 1
	}
	return 0
}

func newDebugLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
