package outcome

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// RequestAddress is the flattened delivery destination carried on outbound
// requests.
type RequestAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Request is the outbound message asking the next collaborator to act on an
// order. One shape serves all three requestable stages; collaborators read
// the fields relevant to them.
type Request struct {
	OrderID       kernel.UUID    `json:"orderId"`
	CorrelationID string         `json:"correlationId"`
	Stage         Stage          `json:"stage"`
	CustomerID    string         `json:"customerId"`
	Address       RequestAddress `json:"address"`
	TotalAmount   float64        `json:"totalAmount"`
	Waypoints     []string       `json:"waypoints,omitempty"`
}

// Topic returns the bus topic the request must be published on.
func (r Request) Topic() string {
	switch r.Stage {
	case StageBilling:
		return TopicBillingRequests
	case StageWarehouse:
		return TopicWarehouseRequests
	case StageRouting:
		return TopicRoutingRequests
	}
	return ""
}

func requestAddressOf(o *order.Order) RequestAddress {
	addr := o.Address()
	return RequestAddress{
		Street:     addr.Street(),
		City:       addr.City(),
		PostalCode: addr.PostalCode(),
		Country:    addr.Country(),
	}
}

// NewBillingRequest builds the billing charge request sent at order intake.
func NewBillingRequest(o *order.Order) Request {
	return Request{
		OrderID:       o.ID(),
		CorrelationID: o.CorrelationID(),
		Stage:         StageBilling,
		CustomerID:    o.CustomerID(),
		Address:       requestAddressOf(o),
		TotalAmount:   o.TotalAmount(),
	}
}

// NewWarehouseRequest builds the packaging request sent after billing
// completed.
func NewWarehouseRequest(o *order.Order) Request {
	return Request{
		OrderID:       o.ID(),
		CorrelationID: o.CorrelationID(),
		Stage:         StageWarehouse,
		CustomerID:    o.CustomerID(),
		Address:       requestAddressOf(o),
		TotalAmount:   o.TotalAmount(),
	}
}

// NewRoutingRequest builds the route-planning request sent after the package
// is ready.
func NewRoutingRequest(o *order.Order) Request {
	return Request{
		OrderID:       o.ID(),
		CorrelationID: o.CorrelationID(),
		Stage:         StageRouting,
		CustomerID:    o.CustomerID(),
		Address:       requestAddressOf(o),
		TotalAmount:   o.TotalAmount(),
	}
}
