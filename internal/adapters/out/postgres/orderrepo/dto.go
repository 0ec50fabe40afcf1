// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status is stored as its wire name so operators can read the table directly;
// the version column carries the optimistic-lock counter checked on update.
type OrderDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CorrelationID string     `gorm:"type:varchar(64);uniqueIndex"`
	CustomerID    string     `gorm:"type:varchar(64);index"`
	Address       AddressDTO `gorm:"embedded"`
	TotalAmount   float64
	BillingStatus string         `gorm:"type:varchar(16)"`
	Status        string         `gorm:"type:varchar(32);index"`
	Version       int            `gorm:"not null"`
	Waypoints     pq.StringArray `gorm:"type:text[]"`
	DriverID      string         `gorm:"type:varchar(64)"`
	VehicleID     string         `gorm:"type:varchar(64)"`

	CreatedAt      time.Time
	BilledAt       *time.Time
	PackageReadyAt *time.Time
	RoutedAt       *time.Time
	PickedUpAt     *time.Time
	DeliveredAt    *time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO represents the embedded delivery destination within the order table.
type AddressDTO struct {
	Street     string `gorm:"type:varchar(255)"`
	City       string `gorm:"type:varchar(128)"`
	PostalCode string `gorm:"type:varchar(32)"`
	Country    string `gorm:"type:varchar(64)"`
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	addr := aggregate.Address()
	return OrderDTO{
		ID:            aggregate.ID().Bytes(),
		CorrelationID: aggregate.CorrelationID(),
		CustomerID:    aggregate.CustomerID(),
		Address: AddressDTO{
			Street:     addr.Street(),
			City:       addr.City(),
			PostalCode: addr.PostalCode(),
			Country:    addr.Country(),
		},
		TotalAmount:    aggregate.TotalAmount(),
		BillingStatus:  aggregate.BillingStatus(),
		Status:         aggregate.Status().String(),
		Version:        aggregate.Version(),
		Waypoints:      aggregate.Waypoints(),
		DriverID:       aggregate.DriverID(),
		VehicleID:      aggregate.VehicleID(),
		CreatedAt:      aggregate.CreatedAt(),
		BilledAt:       aggregate.BilledAt(),
		PackageReadyAt: aggregate.PackageReadyAt(),
		RoutedAt:       aggregate.RoutedAt(),
		PickedUpAt:     aggregate.PickedUpAt(),
		DeliveredAt:    aggregate.DeliveredAt(),
		UpdatedAt:      aggregate.UpdatedAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including the stored version using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	addr := order.Address{}
	if dto.Address != (AddressDTO{}) {
		addr, err = order.NewAddress(dto.Address.Street, dto.Address.City, dto.Address.PostalCode, dto.Address.Country)
		if err != nil {
			return nil, err
		}
	}

	return order.RestoreOrder(
		id,
		dto.CorrelationID,
		dto.CustomerID,
		addr,
		dto.TotalAmount,
		dto.BillingStatus,
		status,
		dto.Version,
		dto.Waypoints,
		dto.DriverID,
		dto.VehicleID,
		dto.CreatedAt,
		dto.BilledAt,
		dto.PackageReadyAt,
		dto.RoutedAt,
		dto.PickedUpAt,
		dto.DeliveredAt,
		dto.UpdatedAt,
	)
}
