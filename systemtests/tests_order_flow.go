package systemtests

import (
	"github.com/microservices-demo/e2e-contract-tests/framework/ldtest"
	"github.com/microservices-demo/e2e-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
)

func DoOrderFlowTests(t *ldtest.T) {
	t.Run("place order and verify listing", func(t *ldtest.T) {
		gateway := NewGatewayClient(t)

		userID := RequireFirstID(t, gateway.RequireListing(t, servicedef.UsersPath), "users")
		productID := RequireFirstID(t, gateway.RequireListing(t, servicedef.ProductsPath), "products")

		countBefore := gateway.RequireListing(t, servicedef.OrdersPath).Count()

		order := gateway.RequireCreateOrder(t, servicedef.CreateOrderParams{
			UserID:    userID,
			ProductID: productID,
		})
		t.Debug("Created order %s", order.ID.JSONString())

		ordersAfter := gateway.RequireListing(t, servicedef.OrdersPath)
		assert.Equal(t, countBefore+1, ordersAfter.Count(),
			"order count should increase by exactly one after creating an order")
		assert.True(t, ListingContainsID(ordersAfter, order.ID),
			"new order %s was not in the listing; ids were %v", order.ID.JSONString(), ListingIDs(ordersAfter))
	})
}
