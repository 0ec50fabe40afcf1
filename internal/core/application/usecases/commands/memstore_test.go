package commands_test

import (
	"context"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"fulfillment/internal/pkg/errs"
)

// memStore is an in-memory order/event store with the same optimistic
// locking contract as the real repository: Update compares the incoming
// aggregate's version against the stored one and bumps it on success. Used
// where mock call scripting cannot express read-modify-write races.
type memStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	events []*event.Event
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*order.Order)}
}

func cloneOrder(o *order.Order, version int) *order.Order {
	clone, err := order.RestoreOrder(
		o.ID(), o.CorrelationID(), o.CustomerID(), o.Address(), o.TotalAmount(),
		o.BillingStatus(), o.Status(), version, o.Waypoints(), o.DriverID(), o.VehicleID(),
		o.CreatedAt(), o.BilledAt(), o.PackageReadyAt(), o.RoutedAt(), o.PickedUpAt(), o.DeliveredAt(),
		o.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	return clone
}

func (s *memStore) get(id string) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	return cloneOrder(o, o.Version())
}

func (s *memStore) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.Type())
	}
	return types
}

type memOrderRepo struct{ store *memStore }

func (r memOrderRepo) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID().String()] = cloneOrder(o, o.Version())
	return nil
}

func (r memOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[o.ID().String()]
	if !ok {
		return errs.NewObjectNotFoundError("orderId", o.ID().String())
	}
	if stored.Version() != o.Version() {
		return errs.NewVersionConflictError("order", o.ID().String(), o.Version())
	}
	r.store.orders[o.ID().String()] = cloneOrder(o, o.Version()+1)
	return nil
}

func (r memOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	o := r.store.get(id.String())
	if o == nil {
		return nil, errs.NewObjectNotFoundError("orderId", id.String())
	}
	return o, nil
}

func (r memOrderRepo) GetByCorrelationID(context.Context, string) (*order.Order, error) {
	panic("not used in tests")
}

func (r memOrderRepo) GetAllByCustomer(context.Context, string) ([]*order.Order, error) {
	panic("not used in tests")
}

func (r memOrderRepo) GetAllInStatus(context.Context, order.Status) ([]*order.Order, error) {
	panic("not used in tests")
}

func (r memOrderRepo) GetStuckSince(context.Context, time.Time) ([]*order.Order, error) {
	panic("not used in tests")
}

type memEventRepo struct{ store *memStore }

func (r memEventRepo) Append(_ context.Context, record *event.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, record)
	return nil
}

func (r memEventRepo) GetAllByOrder(_ context.Context, orderID kernel.UUID) ([]*event.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*event.Event
	for _, e := range r.store.events {
		if e.OrderID().IsEqual(orderID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// memUoW applies writes immediately; transaction boundaries are a no-op.
// Good enough for handler-level tests that exercise locking and retries.
type memUoW struct{ store *memStore }

func (u memUoW) Begin(context.Context) error            { return nil }
func (u memUoW) Commit(context.Context) error           { return nil }
func (u memUoW) Rollback(context.Context) error         { return nil }
func (u memUoW) OrderRepository() ports.OrderRepository { return memOrderRepo{u.store} }
func (u memUoW) EventRepository() ports.EventRepository { return memEventRepo{u.store} }

type memUoWFactory struct{ store *memStore }

func (f memUoWFactory) Create() commands.OrderUoW { return memUoW{f.store} }
