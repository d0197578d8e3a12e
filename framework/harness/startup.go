package harness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	startupProbePath    = "/health"
	startupPollInterval = time.Millisecond * 100
)

// awaitGateway polls the gateway until it answers an HTTP request at all. The status code
// does not matter here; judging it is the job of the tests.
func (h *TestHarness) awaitGateway(timeout time.Duration, output io.Writer) error {
	probeURL := h.GatewayURL(startupProbePath)
	fmt.Fprintf(output, "Waiting for gateway at %s", h.gatewayBaseURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		status, err := h.probe(probeURL, deadline)
		if err == nil {
			fmt.Fprintln(output)
			h.logger.Printf("Startup probe of %s returned status %d", probeURL, status)
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out waiting for gateway, result of last query was: %w", err)
		}
		time.Sleep(startupPollInterval)
	}
}

func (h *TestHarness) probe(probeURL string, deadline time.Time) (int, error) {
	perAttempt := time.Now().Add(h.timeout)
	if perAttempt.After(deadline) {
		perAttempt = deadline
	}
	ctx, cancel := context.WithDeadline(context.Background(), perAttempt)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
