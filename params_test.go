package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/microservices-demo/e2e-contract-tests/framework"
	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsDefaults(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"e2e"}))

	assert.Equal(t, "http://localhost:3003", p.gatewayURL)
	assert.Equal(t, defaultServices(), p.services.targets)
	assert.Equal(t, harness.DefaultRequestTimeout, p.timeout)
	assert.Equal(t, time.Duration(0), p.startupTimeout)
	assert.False(t, p.filters.IsDefined())
	assert.Empty(t, p.otlpEndpoint)
}

func TestParamsServicesReplaceDefaults(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"e2e",
		"-service", "users=http://users:8080",
		"-service", "gateway=http://gw:8080",
		"-gateway", "http://gw:8080",
		"-timeout", "2s",
	}))

	assert.Equal(t, []harness.ServiceTarget{
		{Name: "users", BaseURL: "http://users:8080"},
		{Name: "gateway", BaseURL: "http://gw:8080"},
	}, p.services.targets)
	assert.Equal(t, "http://gw:8080", p.gatewayURL)
	assert.Equal(t, time.Second*2, p.timeout)
}

func TestParamsInvalid(t *testing.T) {
	for name, args := range map[string][]string{
		"bad service":     {"-service", "no-equals-sign"},
		"empty name":      {"-service", "=http://x"},
		"bad regex":       {"-run", "("},
		"zero timeout":    {"-timeout", "0s"},
		"unknown flag":    {"-nope"},
		"extra arguments": {"extra"},
	} {
		t.Run(name, func(t *testing.T) {
			var p commandParams
			assert.False(t, p.Read(append([]string{"e2e"}, args...)))
		})
	}
}

func TestRerunFailedCommand(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"e2e", "-service", "user-service=http://localhost:3000"}))

	results := ldtest.Results{
		Failures: []ldtest.TestResult{
			{TestID: ldtest.TestID{Path: []string{"health", "user-service"}}, Errors: []error{errors.New("x")}},
			{TestID: ldtest.TestID{Path: []string{"order flow", "place order and verify listing"}}, Errors: []error{errors.New("y")}},
		},
	}

	assert.Equal(t,
		"e2e -gateway http://localhost:3003 -service user-service=http://localhost:3000 -timeout 5s -debug"+
			" -run '^health$' -run '^health/user-service$'"+
			" -run '^order flow$' -run '^order flow/place order and verify listing$'",
		p.rerunFailedCommand("e2e", results))
}

func TestRerunPatternsSelectOnlyFailedTests(t *testing.T) {
	var filters ldtest.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^health$"))
	require.NoError(t, filters.MustMatch.Set("^health/order-service$"))

	assert.True(t, filters.AsFilter(ldtest.TestID{Path: []string{"health"}}))
	assert.True(t, filters.AsFilter(ldtest.TestID{Path: []string{"health", "order-service"}}))
	assert.False(t, filters.AsFilter(ldtest.TestID{Path: []string{"health", "user-service"}}))
	assert.False(t, filters.AsFilter(ldtest.TestID{Path: []string{"order flow"}}))
}

func TestConsoleTestLogger(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Output: &buf, DebugOutputOnFailure: true}
	id := ldtest.TestID{Path: []string{"health", "order-service"}}

	var debug framework.CapturingLogger
	debug.Printf("hello")

	logger.TestStarted(id)
	logger.TestError(id, errors.New("line 1\nline 2"))
	logger.TestFinished(id, true, debug.Output())
	logger.TestSkipped(ldtest.TestID{Path: []string{"order flow"}}, "excluded by filter parameters")

	out := buf.String()
	assert.Contains(t, out, "[health/order-service]\n  line 1\n  line 2\n  FAILED: health/order-service\n    DEBUG [")
	assert.Contains(t, out, "] hello\n")
	assert.Contains(t, out, "  SKIPPED: order flow (excluded by filter parameters)\n")
}

func TestConsoleTestLoggerOmitsDebugOutputForPassingTests(t *testing.T) {
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Output: &buf, DebugOutputOnFailure: true}
	var debug framework.CapturingLogger
	debug.Printf("hello")

	logger.TestFinished(ldtest.TestID{Path: []string{"x"}}, false, debug.Output())

	assert.Empty(t, buf.String())
}
