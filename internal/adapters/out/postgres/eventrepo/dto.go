// Package eventrepo provides persistence for the append-only order audit
// trail. Records are written once and only ever read back in timeline order;
// there is no update or delete path.
package eventrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EventDTO represents the database structure for persisting audit records.
// Seq is assigned by the database on insert and fixes the timeline order for
// records sharing the same occurrence time.
type EventDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq           int64     `gorm:"autoIncrement"`
	OrderID       uuid.UUID `gorm:"type:uuid;index"`
	CorrelationID string    `gorm:"type:varchar(64);index"`
	EventType     string    `gorm:"type:varchar(64)"`
	Source        string    `gorm:"type:varchar(32)"`
	Status        string    `gorm:"type:varchar(16)"`
	Description   string    `gorm:"type:text"`
	OccurredAt    time.Time `gorm:"index"`
}

// TableName specifies the database table name for audit records.
func (EventDTO) TableName() string {
	return "events"
}

func fromDomain(record *event.Event) EventDTO {
	return EventDTO{
		ID:            record.ID().Bytes(),
		OrderID:       record.OrderID().Bytes(),
		CorrelationID: record.CorrelationID(),
		EventType:     record.Type(),
		Source:        string(record.Source()),
		Status:        string(record.Status()),
		Description:   record.Description(),
		OccurredAt:    record.OccurredAt(),
	}
}

func toDomain(dto EventDTO) (*event.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return event.RestoreEvent(
		id,
		orderID,
		dto.CorrelationID,
		dto.EventType,
		event.Source(dto.Source),
		event.EventStatus(dto.Status),
		dto.Description,
		dto.OccurredAt,
	)
}
