// Package servicedef describes the HTTP resources of the system under test and the JSON
// shapes exchanged with them.
package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

const (
	HealthPath   = "/health"
	UsersPath    = "/api/users"
	ProductsPath = "/api/products"
	OrdersPath   = "/api/orders"
)

// IDKey is the property that holds the identity of every entity.
const IDKey = "id"

// Ids are opaque: the services may use numbers or strings, so they are carried as
// ldvalue.Value and compared by JSON equality.

type CreateOrderParams struct {
	UserID    ldvalue.Value `json:"userId"`
	ProductID ldvalue.Value `json:"productId"`
}

// Order is what the order service returns for a created order. Only ID is checked; the
// services are free to represent Timestamp however they like.
type Order struct {
	ID        ldvalue.Value `json:"id"`
	UserID    ldvalue.Value `json:"userId"`
	ProductID ldvalue.Value `json:"productId"`
	Timestamp ldvalue.Value `json:"timestamp"`
}

// ErrorResponse is the body that the gateway returns along with a non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthStatus struct {
	Status string `json:"status"`
}
