package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/order"
)

// Error is the JSON error body returned by every endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewOrder is the request body for creating an order.
type NewOrder struct {
	CustomerID  string  `json:"customerId"`
	Address     Address `json:"address"`
	TotalAmount float64 `json:"totalAmount"`
}

// CancelOrder is the request body for cancelling an order.
type CancelOrder struct {
	Reason string `json:"reason"`
}

// Address is the delivery destination in request and response bodies.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order is the response body describing one order.
type Order struct {
	ID            string   `json:"id"`
	CorrelationID string   `json:"correlationId"`
	CustomerID    string   `json:"customerId"`
	Address       Address  `json:"address"`
	TotalAmount   float64  `json:"totalAmount"`
	BillingStatus string   `json:"billingStatus,omitempty"`
	Status        string   `json:"status"`
	Waypoints     []string `json:"waypoints,omitempty"`
	DriverID      string   `json:"driverId,omitempty"`
	VehicleID     string   `json:"vehicleId,omitempty"`

	CreatedAt      time.Time  `json:"createdAt"`
	BilledAt       *time.Time `json:"billedAt,omitempty"`
	PackageReadyAt *time.Time `json:"packageReadyAt,omitempty"`
	RoutedAt       *time.Time `json:"routedAt,omitempty"`
	PickedUpAt     *time.Time `json:"pickedUpAt,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Event is the response body describing one audit record.
type Event struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"orderId"`
	CorrelationID string    `json:"correlationId"`
	EventType     string    `json:"eventType"`
	Source        string    `json:"source"`
	Status        string    `json:"status"`
	Description   string    `json:"description,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func orderFromReadModel(resp queries.OrderResponse) Order {
	return Order{
		ID:            resp.ID.String(),
		CorrelationID: resp.CorrelationID,
		CustomerID:    resp.CustomerID,
		Address: Address{
			Street:     resp.Street,
			City:       resp.City,
			PostalCode: resp.PostalCode,
			Country:    resp.Country,
		},
		TotalAmount:    resp.TotalAmount,
		BillingStatus:  resp.BillingStatus,
		Status:         resp.Status,
		Waypoints:      resp.Waypoints,
		DriverID:       resp.DriverID,
		VehicleID:      resp.VehicleID,
		CreatedAt:      resp.CreatedAt,
		BilledAt:       resp.BilledAt,
		PackageReadyAt: resp.PackageReadyAt,
		RoutedAt:       resp.RoutedAt,
		PickedUpAt:     resp.PickedUpAt,
		DeliveredAt:    resp.DeliveredAt,
		UpdatedAt:      resp.UpdatedAt,
	}
}

func orderFromAggregate(o *order.Order) Order {
	addr := o.Address()
	return Order{
		ID:            o.ID().String(),
		CorrelationID: o.CorrelationID(),
		CustomerID:    o.CustomerID(),
		Address: Address{
			Street:     addr.Street(),
			City:       addr.City(),
			PostalCode: addr.PostalCode(),
			Country:    addr.Country(),
		},
		TotalAmount:    o.TotalAmount(),
		BillingStatus:  o.BillingStatus(),
		Status:         o.Status().String(),
		Waypoints:      o.Waypoints(),
		DriverID:       o.DriverID(),
		VehicleID:      o.VehicleID(),
		CreatedAt:      o.CreatedAt(),
		BilledAt:       o.BilledAt(),
		PackageReadyAt: o.PackageReadyAt(),
		RoutedAt:       o.RoutedAt(),
		PickedUpAt:     o.PickedUpAt(),
		DeliveredAt:    o.DeliveredAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
}

func eventFromReadModel(resp queries.EventResponse) Event {
	return Event{
		ID:            resp.ID.String(),
		OrderID:       resp.OrderID.String(),
		CorrelationID: resp.CorrelationID,
		EventType:     resp.EventType,
		Source:        resp.Source,
		Status:        resp.Status,
		Description:   resp.Description,
		OccurredAt:    resp.OccurredAt,
	}
}
