package systemtests

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"
	"github.com/microservices-demo/e2e-contract-tests/servicedef"

	"github.com/stretchr/testify/require"
)

func DoHealthTests(t *ldtest.T) {
	for _, service := range requireContext(t).harness.Services() {
		service := service
		t.Run(service.Name, func(t *ldtest.T) {
			checkServiceHealth(t, service)
		})
	}
}

func checkServiceHealth(t *ldtest.T, service harness.ServiceTarget) {
	h := requireContext(t).harness
	resp, err := h.Get(newRequestContext(t), service.BaseURL+servicedef.HealthPath, t.DebugLogger())
	requireAnswered(t, service.Name, "health check", err)
	t.Debug("%s answered %d in %s", service.Name, resp.StatusCode, resp.Elapsed)
	if resp.StatusCode != http.StatusOK {
		require.Fail(t, fmt.Sprintf("%s is down or %s endpoint failed: expected status 200, got %d",
			service.Name, servicedef.HealthPath, resp.StatusCode))
	}

	var status servicedef.HealthStatus
	if json.Unmarshal(resp.Body, &status) == nil && status.Status != "" {
		t.Debug("%s reports status %q", service.Name, status.Status)
	}
}
