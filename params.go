package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"

	"github.com/alessio/shellescape"
	"github.com/samber/lo"
)

const defaultGatewayURL = "http://localhost:3003"

func defaultServices() []harness.ServiceTarget {
	return []harness.ServiceTarget{
		{Name: "user-service", BaseURL: "http://localhost:3000"},
		{Name: "product-service", BaseURL: "http://localhost:3001"},
		{Name: "order-service", BaseURL: "http://localhost:3002"},
		{Name: "gateway-service", BaseURL: "http://localhost:3003"},
	}
}

type commandParams struct {
	gatewayURL     string
	services       serviceList
	timeout        time.Duration
	startupTimeout time.Duration
	filters        ldtest.RegexFilters
	debug          bool
	debugAll       bool
	otlpEndpoint   string
}

func (c *commandParams) Read(args []string) bool {
	c.services = serviceList{targets: defaultServices()}

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.gatewayURL, "gateway", defaultGatewayURL, "base URL of the API gateway")
	fs.Var(&c.services, "service", "name=URL of a service whose health is checked (repeatable; replaces the defaults)")
	fs.DurationVar(&c.timeout, "timeout", harness.DefaultRequestTimeout, "time limit for each HTTP request")
	fs.DurationVar(&c.startupTimeout, "startup-timeout", 0, "wait up to this long for the gateway to start answering")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.otlpEndpoint, "otlp-endpoint", "", "host:port of an OTLP gRPC collector to export test spans to")

	if err := fs.Parse(args[1:]); err != nil {
		return false // the flag set has already reported the error
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	if c.timeout <= 0 {
		fmt.Fprintln(os.Stderr, "-timeout must be greater than zero")
		return false
	}
	return true
}

// rerunFailedCommand returns a command line that repeats this run, selecting only the tests
// that failed. A test runs only if all of its parent groups are also selected, so their IDs
// are included too.
func (c *commandParams) rerunFailedCommand(program string, results ldtest.Results) string {
	var cmd commandBuilder
	cmd.add(program, "-gateway", c.gatewayURL)
	for _, s := range c.services.targets {
		cmd.add("-service", s.String())
	}
	cmd.add("-timeout", c.timeout.String())
	if c.startupTimeout > 0 {
		cmd.add("-startup-timeout", c.startupTimeout.String())
	}
	if c.otlpEndpoint != "" {
		cmd.add("-otlp-endpoint", c.otlpEndpoint)
	}
	cmd.add("-debug")

	var names []string
	for _, f := range results.Failures {
		for i := range f.TestID.Path {
			names = append(names, ldtest.TestID{Path: f.TestID.Path[:i+1]}.String())
		}
	}
	for _, name := range lo.Uniq(names) {
		cmd.add("-run", "^"+regexp.QuoteMeta(name)+"$")
	}
	return cmd.String()
}

type serviceList struct {
	targets  []harness.ServiceTarget
	explicit bool
}

func (s *serviceList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(lo.Map(s.targets, func(t harness.ServiceTarget, _ int) string {
		return t.String()
	}), ",")
}

// Set is called by the command line parser. The first explicit value discards the defaults.
func (s *serviceList) Set(value string) error {
	name, url, ok := strings.Cut(value, "=")
	if !ok || name == "" || url == "" {
		return fmt.Errorf("service must be specified as name=URL, not %q", value)
	}
	if !s.explicit {
		s.targets = nil
		s.explicit = true
	}
	s.targets = append(s.targets, harness.ServiceTarget{Name: name, BaseURL: url})
	return nil
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
