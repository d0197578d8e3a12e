package systemtests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/microservices-demo/e2e-contract-tests/framework"
	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"
	"github.com/microservices-demo/e2e-contract-tests/servicedef"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// GatewayClient makes requests to the API gateway on behalf of a single test. Every request it
// makes carries the same correlation ID.
type GatewayClient struct {
	harness *harness.TestHarness
	ctx     context.Context
	logger  framework.Logger
}

func NewGatewayClient(t *ldtest.T) *GatewayClient {
	return &GatewayClient{
		harness: requireContext(t).harness,
		ctx:     newRequestContext(t),
		logger:  t.DebugLogger(),
	}
}

// RequireListing gets a collection resource, and fails the test unless the response is a 200
// whose body is a JSON array.
func (c *GatewayClient) RequireListing(t *ldtest.T, path string) ldvalue.Value {
	resp := c.requireOK(t, http.MethodGet, path, nil)
	var listing ldvalue.Value
	require.NoError(t, json.Unmarshal(resp.Body, &listing), "GET %s returned malformed JSON", path)
	require.Equal(t, ldvalue.ArrayType, listing.Type(),
		"GET %s did not return a JSON array: %s", path, listing.JSONString())
	return listing
}

// RequireCreateOrder posts a new order, and fails the test unless the response is a 200 whose
// body is an order with a non-null id.
func (c *GatewayClient) RequireCreateOrder(t *ldtest.T, params servicedef.CreateOrderParams) servicedef.Order {
	resp := c.requireOK(t, http.MethodPost, servicedef.OrdersPath, params)
	var order servicedef.Order
	require.NoError(t, json.Unmarshal(resp.Body, &order),
		"POST %s did not return an order object: %s", servicedef.OrdersPath, string(resp.Body))
	require.False(t, order.ID.IsNull(),
		"POST %s response did not include an order id: %s", servicedef.OrdersPath, string(resp.Body))
	return order
}

func (c *GatewayClient) requireOK(t *ldtest.T, method, path string, body interface{}) *harness.Response {
	url := c.harness.GatewayURL(path)
	var resp *harness.Response
	var err error
	if body == nil {
		resp, err = c.harness.Get(c.ctx, url, c.logger)
	} else {
		resp, err = c.harness.PostJSON(c.ctx, url, body, c.logger)
	}
	requireAnswered(t, "gateway", method+" "+path, err)
	t.Debug("%s %s answered %d in %s", method, path, resp.StatusCode, resp.Elapsed)
	if resp.StatusCode != http.StatusOK {
		require.Fail(t, unexpectedStatusMessage(method+" "+path, resp))
	}
	return resp
}

func unexpectedStatusMessage(request string, resp *harness.Response) string {
	message := fmt.Sprintf("%s: expected status 200, got %d", request, resp.StatusCode)
	var errorResponse servicedef.ErrorResponse
	if json.Unmarshal(resp.Body, &errorResponse) == nil && errorResponse.Error != "" {
		message += fmt.Sprintf(" (%s)", errorResponse.Error)
	}
	return message
}

// RequireFirstID returns the id of the first element of a listing. The test fails if the
// listing is empty or the element has no id.
func RequireFirstID(t *ldtest.T, listing ldvalue.Value, kind string) ldvalue.Value {
	if listing.Count() == 0 {
		require.Fail(t, fmt.Sprintf("no %s available; cannot place an order", kind))
	}
	first := listing.GetByIndex(0)
	id := first.GetByKey(servicedef.IDKey)
	require.False(t, id.IsNull(), "first of the %s has no id: %s", kind, first.JSONString())
	t.Debug("Using first of %d %s, id %s", listing.Count(), kind, id.JSONString())
	return id
}

// ListingIDs returns the id of every element of a listing, in order.
func ListingIDs(listing ldvalue.Value) []ldvalue.Value {
	return lo.Times(listing.Count(), func(i int) ldvalue.Value {
		return listing.GetByIndex(i).GetByKey(servicedef.IDKey)
	})
}

// ListingContainsID returns true if any element of the listing has the given id. Ids are
// compared by JSON equality, so 101 and "101" are different.
func ListingContainsID(listing ldvalue.Value, id ldvalue.Value) bool {
	return lo.ContainsBy(ListingIDs(listing), func(v ldvalue.Value) bool {
		return v.Equal(id)
	})
}
