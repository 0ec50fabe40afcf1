package orderrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order using a compare-and-swap on its version:
// the row is written only if it still carries the version the aggregate was
// read at, and the stored version is bumped in the same statement. A lost
// swap yields errs.VersionConflictError so the caller re-reads and retries.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	updates := map[string]any{
		"billing_status":   dto.BillingStatus,
		"status":           dto.Status,
		"version":          dto.Version + 1,
		"total_amount":     dto.TotalAmount,
		"waypoints":        dto.Waypoints,
		"driver_id":        dto.DriverID,
		"vehicle_id":       dto.VehicleID,
		"billed_at":        dto.BilledAt,
		"package_ready_at": dto.PackageReadyAt,
		"routed_at":        dto.RoutedAt,
		"picked_up_at":     dto.PickedUpAt,
		"delivered_at":     dto.DeliveredAt,
		"updated_at":       dto.UpdatedAt,
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&OrderDTO{}).
			Where("id = ?", dto.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("orderId", aggregate.ID().String())
		}
		return errs.NewVersionConflictError("order", aggregate.ID().String(), aggregate.Version())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orderId", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByCorrelationID retrieves the order tracked by the given workflow key.
func (r *GormOrderRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*order.Order, error) {
	if correlationID == "" {
		return nil, errs.NewValueIsRequiredError("correlationId")
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "correlation_id = ?", correlationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("correlationId", correlationID)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllByCustomer retrieves all orders of one customer, newest first.
func (r *GormOrderRepository) GetAllByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	if customerID == "" {
		return nil, errs.NewValueIsRequiredError("customerId")
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&dtos, "customer_id = ?", customerID).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAllInStatus retrieves all orders currently in the given status.
func (r *GormOrderRepository) GetAllInStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Find(&dtos, "status = ?", status.String()).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetStuckSince retrieves non-terminal orders whose last update is at or
// before the cutoff. Terminal statuses are excluded in SQL so the watchdog
// never re-fails finished orders.
func (r *GormOrderRepository) GetStuckSince(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	terminal := []string{
		order.Delivered.String(),
		order.Cancelled.String(),
		order.Failed.String(),
		order.BillingFailed.String(),
		order.WarehouseFailed.String(),
		order.RouteFailed.String(),
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Where("updated_at <= ? AND status NOT IN ?", cutoff, terminal).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
