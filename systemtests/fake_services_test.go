package systemtests

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/microservices-demo/e2e-contract-tests/framework/harness"
	"github.com/microservices-demo/e2e-contract-tests/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// fakeGateway behaves like the API gateway in front of in-memory user, product, and order
// services. Its misbehave hooks let tests simulate broken services.
type fakeGateway struct {
	lock              sync.Mutex
	users             []ldvalue.Value
	products          []ldvalue.Value
	orders            []ldvalue.Value
	nextOrderID       int
	postedOrders      []servicedef.CreateOrderParams
	correlationIDs    []string
	overrideCreate    http.Handler
	storeOrder        func(order ldvalue.Value) []ldvalue.Value
	overrideListUsers http.Handler
}

func newFakeGateway(users, products []ldvalue.Value) *fakeGateway {
	return &fakeGateway{users: users, products: products, nextOrderID: 101}
}

func idObject(id interface{}) ldvalue.Value {
	return ldvalue.ObjectBuild().Set(servicedef.IDKey, ldvalue.CopyArbitraryValue(id)).Build()
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.lock.Lock()
	g.correlationIDs = append(g.correlationIDs, r.Header.Get(harness.CorrelationIDHeader))
	g.lock.Unlock()

	switch {
	case r.URL.Path == servicedef.HealthPath:
		httphelpers.HandlerWithJSONResponse(servicedef.HealthStatus{Status: "OK"}, nil).ServeHTTP(w, r)
	case r.URL.Path == servicedef.UsersPath && r.Method == http.MethodGet:
		if g.overrideListUsers != nil {
			g.overrideListUsers.ServeHTTP(w, r)
			return
		}
		g.writeListing(w, r, &g.users)
	case r.URL.Path == servicedef.ProductsPath && r.Method == http.MethodGet:
		g.writeListing(w, r, &g.products)
	case r.URL.Path == servicedef.OrdersPath && r.Method == http.MethodGet:
		g.writeListing(w, r, &g.orders)
	case r.URL.Path == servicedef.OrdersPath && r.Method == http.MethodPost:
		g.createOrder(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (g *fakeGateway) writeListing(w http.ResponseWriter, r *http.Request, items *[]ldvalue.Value) {
	g.lock.Lock()
	listing := ldvalue.ArrayOf(*items...)
	g.lock.Unlock()
	httphelpers.HandlerWithJSONResponse(listing, nil).ServeHTTP(w, r)
}

func (g *fakeGateway) createOrder(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var params servicedef.CreateOrderParams
	if err := json.Unmarshal(body, &params); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	g.lock.Lock()
	g.postedOrders = append(g.postedOrders, params)
	if g.overrideCreate != nil {
		g.lock.Unlock()
		g.overrideCreate.ServeHTTP(w, r)
		return
	}
	order := servicedef.Order{
		ID:        ldvalue.Int(g.nextOrderID),
		UserID:    params.UserID,
		ProductID: params.ProductID,
		Timestamp: ldvalue.String(time.Now().UTC().Format(time.RFC3339)),
	}
	g.nextOrderID++
	data, _ := json.Marshal(order)
	orderValue := ldvalue.Parse(data)
	if g.storeOrder != nil {
		g.orders = append(g.orders, g.storeOrder(orderValue)...)
	} else {
		g.orders = append(g.orders, orderValue)
	}
	g.lock.Unlock()

	httphelpers.HandlerWithJSONResponse(order, nil).ServeHTTP(w, r)
}

func (g *fakeGateway) getPostedOrders() []servicedef.CreateOrderParams {
	g.lock.Lock()
	defer g.lock.Unlock()
	return append([]servicedef.CreateOrderParams(nil), g.postedOrders...)
}

func (g *fakeGateway) getCorrelationIDs() []string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return append([]string(nil), g.correlationIDs...)
}
