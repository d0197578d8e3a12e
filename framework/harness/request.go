package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/microservices-demo/e2e-contract-tests/framework"

	"github.com/lithammer/shortuuid/v3"
	"go.opentelemetry.io/otel/propagation"
)

const (
	CorrelationIDHeader = "Correlation-ID"
	UserAgent           = "e2e-contract-tests"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}

// RequestError means that no complete HTTP response was obtained: the connection failed, the
// request timed out, or the body could not be read.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Timeout returns true if the request failed because the time limit was exceeded.
func (e *RequestError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

type correlationIDKey struct{}

// ContextWithCorrelationID attaches a correlation ID which will be sent with every request
// made with the returned context.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// CorrelationIDFromContext returns the correlation ID attached to ctx, or "" if none.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewCorrelationID generates a new random correlation ID.
func NewCorrelationID() string {
	return shortuuid.New()
}

// Get makes a GET request.
func (h *TestHarness) Get(ctx context.Context, url string, logger framework.Logger) (*Response, error) {
	return h.Do(ctx, http.MethodGet, url, nil, logger)
}

// PostJSON makes a POST request whose body is the JSON encoding of body.
func (h *TestHarness) PostJSON(ctx context.Context, url string, body interface{}, logger framework.Logger) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return h.Do(ctx, http.MethodPost, url, data, logger)
}

// Do makes an HTTP request and reads the whole response. The request, including reading the
// body, is bounded by the harness's request timeout. Any non-nil body is sent as JSON.
//
// The exchange is logged to logger, if it is non-nil, and always to the harness's own debug
// logger tagged with the correlation ID.
//
// A non-2xx status is not an error; the caller decides which statuses are acceptable.
func (h *TestHarness) Do(
	ctx context.Context,
	method string,
	url string,
	body []byte,
	logger framework.Logger,
) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &RequestError{Method: method, URL: url, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	correlationID := CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}
	req.Header.Set(CorrelationIDHeader, correlationID)
	propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(req.Header))

	log := h.newRequestLogger(correlationID, logger)
	if body != nil {
		log.Printf(">> %s %s %s", method, url, string(body))
	} else {
		log.Printf(">> %s %s", method, url)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		log.Printf("<< %s %s: %s", method, url, err)
		return nil, &RequestError{Method: method, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("<< %s %s: error reading body: %s", method, url, err)
		return nil, &RequestError{Method: method, URL: url, Err: fmt.Errorf("error reading response body: %w", err)}
	}
	elapsed := time.Since(start)

	log.Printf("<< %d %s (%s)", resp.StatusCode, string(data), elapsed)
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Elapsed:    elapsed,
	}, nil
}

type requestLogger struct {
	testLogger    framework.Logger
	harnessLogger framework.Logger
	correlationID string
}

func (h *TestHarness) newRequestLogger(correlationID string, testLogger framework.Logger) requestLogger {
	return requestLogger{testLogger: testLogger, harnessLogger: h.logger, correlationID: correlationID}
}

func (l requestLogger) Printf(message string, args ...interface{}) {
	if l.testLogger != nil {
		l.testLogger.Printf(message, args...)
	}
	l.harnessLogger.Printf("[%s] %s", l.correlationID, fmt.Sprintf(message, args...))
}
