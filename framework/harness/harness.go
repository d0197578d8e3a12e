package harness

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microservices-demo/e2e-contract-tests/framework"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultRequestTimeout bounds every request that the harness makes, unless the
// configuration says otherwise.
const DefaultRequestTimeout = time.Second * 5

// ServiceTarget is one independently deployed service whose liveness can be probed.
type ServiceTarget struct {
	Name    string
	BaseURL string
}

func (s ServiceTarget) String() string {
	return s.Name + "=" + s.BaseURL
}

// Config describes the system under test and how to talk to it.
type Config struct {
	// GatewayBaseURL is the single entry point for all /api/* requests.
	GatewayBaseURL string

	// Services lists every service that exposes a health resource.
	Services []ServiceTarget

	// RequestTimeout bounds each HTTP call, including reading the response body. Zero means
	// DefaultRequestTimeout.
	RequestTimeout time.Duration

	// StartupTimeout, if non-zero, makes NewTestHarness wait up to that long for the gateway
	// to start answering HTTP requests.
	StartupTimeout time.Duration

	// HTTPClient is used for all requests. If nil, a client whose requests are recorded as
	// OpenTelemetry client spans is used.
	HTTPClient *http.Client
}

// TestHarness is the connection between test logic and the system under test. It knows where
// every service lives, and makes bounded HTTP requests on behalf of tests.
type TestHarness struct {
	gatewayBaseURL string
	services       []ServiceTarget
	client         *http.Client
	timeout        time.Duration
	logger         framework.Logger
}

// NewTestHarness validates the configuration and creates a TestHarness. If a startup timeout
// was specified, it also waits until the gateway is reachable, writing progress information
// to startupOutput.
func NewTestHarness(
	config Config,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}

	gatewayURL, err := normalizeBaseURL(config.GatewayBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway URL: %w", err)
	}
	if len(config.Services) == 0 {
		return nil, errors.New("no services were configured")
	}
	services := make([]ServiceTarget, 0, len(config.Services))
	seen := make(map[string]bool)
	for _, s := range config.Services {
		if s.Name == "" {
			return nil, fmt.Errorf("service with URL %q has no name", s.BaseURL)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("service %q was configured more than once", s.Name)
		}
		seen[s.Name] = true
		u, err := normalizeBaseURL(s.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid URL for service %q: %w", s.Name, err)
		}
		services = append(services, ServiceTarget{Name: s.Name, BaseURL: u})
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	h := &TestHarness{
		gatewayBaseURL: gatewayURL,
		services:       services,
		client:         client,
		timeout:        timeout,
		logger:         debugLogger,
	}

	if config.StartupTimeout > 0 {
		if err := h.awaitGateway(config.StartupTimeout, startupOutput); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// GatewayURL returns the absolute URL of a path on the gateway.
func (h *TestHarness) GatewayURL(path string) string {
	return h.gatewayBaseURL + path
}

// Services returns the configured health-checked services, in configuration order.
func (h *TestHarness) Services() []ServiceTarget {
	return append([]ServiceTarget(nil), h.services...)
}

// RequestTimeout returns the bound that applies to every request.
func (h *TestHarness) RequestTimeout() time.Duration {
	return h.timeout
}

func normalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%q is not an http or https URL", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%q has no host", raw)
	}
	return strings.TrimSuffix(raw, "/"), nil
}
