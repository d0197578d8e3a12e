package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/microservices-demo/e2e-contract-tests/framework"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"

	"github.com/fatih/color"
)

var (
	failedMarker  = color.New(color.FgRed, color.Bold)
	skippedMarker = color.New(color.FgYellow)
)

type ConsoleTestLogger struct {
	Output               io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Output == nil {
		return os.Stdout
	}
	return c.Output
}

func (c *ConsoleTestLogger) TestStarted(id ldtest.TestID) {
	fmt.Fprintf(c.out(), "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id ldtest.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id ldtest.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		failedMarker.Fprintf(c.out(), "  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id ldtest.TestID, reason string) {
	if reason == "" {
		skippedMarker.Fprintf(c.out(), "  SKIPPED: %s\n", id)
	} else {
		skippedMarker.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
	}
}
