// Package queries contains read-only operations for the query side of the
// CQRS architecture. Query handlers read the database directly with raw SQL
// and return flat response structs; they never touch domain aggregates or
// the unit of work.
package queries

import (
	"context"
	"database/sql"
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// OrderResponse is the flat read model of one order.
type OrderResponse struct {
	ID            kernel.UUID
	CorrelationID string
	CustomerID    string
	Street        string
	City          string
	PostalCode    string
	Country       string
	TotalAmount   float64
	BillingStatus string
	Status        string
	Waypoints     []string
	DriverID      string
	VehicleID     string

	CreatedAt      time.Time
	BilledAt       *time.Time
	PackageReadyAt *time.Time
	RoutedAt       *time.Time
	PickedUpAt     *time.Time
	DeliveredAt    *time.Time
	UpdatedAt      time.Time
}

// orderSelect is the shared projection used by every order query. Columns
// must stay in sync with scanOrderRows.
const orderSelect = `
	SELECT
		id,
		correlation_id,
		customer_id,
		street,
		city,
		postal_code,
		country,
		total_amount,
		billing_status,
		status,
		waypoints,
		driver_id,
		vehicle_id,
		created_at,
		billed_at,
		package_ready_at,
		routed_at,
		picked_up_at,
		delivered_at,
		updated_at
	FROM orders
`

func queryOrders(ctx context.Context, db *gorm.DB, where string, args ...any) ([]OrderResponse, error) {
	rows, err := db.WithContext(ctx).Raw(orderSelect+where, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderResponse, 0)
	for rows.Next() {
		resp, scanErr := scanOrderRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func scanOrderRow(rows *sql.Rows) (OrderResponse, error) {
	var (
		resp      OrderResponse
		id        uuid.UUID
		waypoints pq.StringArray

		billedAt       sql.NullTime
		packageReadyAt sql.NullTime
		routedAt       sql.NullTime
		pickedUpAt     sql.NullTime
		deliveredAt    sql.NullTime
	)

	err := rows.Scan(
		&id,
		&resp.CorrelationID,
		&resp.CustomerID,
		&resp.Street,
		&resp.City,
		&resp.PostalCode,
		&resp.Country,
		&resp.TotalAmount,
		&resp.BillingStatus,
		&resp.Status,
		&waypoints,
		&resp.DriverID,
		&resp.VehicleID,
		&resp.CreatedAt,
		&billedAt,
		&packageReadyAt,
		&routedAt,
		&pickedUpAt,
		&deliveredAt,
		&resp.UpdatedAt,
	)
	if err != nil {
		return OrderResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return OrderResponse{}, err
	}
	resp.ID = orderID
	resp.Waypoints = waypoints
	resp.BilledAt = nullableTime(billedAt)
	resp.PackageReadyAt = nullableTime(packageReadyAt)
	resp.RoutedAt = nullableTime(routedAt)
	resp.PickedUpAt = nullableTime(pickedUpAt)
	resp.DeliveredAt = nullableTime(deliveredAt)

	return resp, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}
