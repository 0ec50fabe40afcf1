package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outcome"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultStageSLA is how long an order may sit in one non-terminal status
// before the watchdog declares the stage timed out.
const DefaultStageSLA = 15 * time.Minute

// StageTimeoutJob sweeps for orders stuck past the stage SLA and fails them
// by publishing a synthetic FAILED outcome on the stuck stage's update topic.
// The failure then travels the same path as a real collaborator report, so
// locking, versioning and the audit trail behave identically.
type StageTimeoutJob struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  ports.Publisher
	events     ports.EventRepository
	sla        time.Duration
	cron       *cron.Cron
	logger     *zap.Logger
	now        func() time.Time
}

// NewStageTimeoutJob creates the watchdog. A non-positive sla falls back to
// DefaultStageSLA.
func NewStageTimeoutJob(
	uowFactory ports.UnitOfWorkFactory,
	publisher ports.Publisher,
	events ports.EventRepository,
	sla time.Duration,
	logger *zap.Logger,
) *StageTimeoutJob {
	if sla <= 0 {
		sla = DefaultStageSLA
	}
	return &StageTimeoutJob{
		uowFactory: uowFactory,
		publisher:  publisher,
		events:     events,
		sla:        sla,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With(zap.String("component", "stage_timeout_job")),
		now:        time.Now,
	}
}

// Start begins the sweep, running at the top of every minute.
func (j *StageTimeoutJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		j.run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("stage timeout job started",
		zap.Duration("sla", j.sla))
	return nil
}

// Stop stops the sweep.
func (j *StageTimeoutJob) Stop() {
	j.cron.Stop()
	j.logger.Info("stage timeout job stopped")
}

// run performs one sweep. Each stuck order is handled independently; one
// order's failure never aborts the sweep.
func (j *StageTimeoutJob) run(ctx context.Context) {
	cutoff := j.now().Add(-j.sla)

	uow := j.uowFactory.Create()
	stuck, err := uow.OrderRepository().GetStuckSince(ctx, cutoff)
	if err != nil {
		j.logger.Error("stuck order sweep failed", zap.Error(err))
		return
	}

	for _, ord := range stuck {
		j.timeOut(ctx, ord)
	}

	if len(stuck) > 0 {
		j.logger.Warn("timed out stuck orders", zap.Int("count", len(stuck)))
	}
}

// timeOut publishes the synthetic failure for one stuck order and records
// the timeout on its audit trail.
func (j *StageTimeoutJob) timeOut(ctx context.Context, ord *order.Order) {
	stage, ok := stageFor(ord.Status())
	if !ok {
		j.logger.Warn("stuck order has no associated stage, skipping",
			zap.String("orderId", ord.ID().String()),
			zap.String("status", ord.Status().String()))
		return
	}

	reason := fmt.Sprintf("%s stage exceeded %s SLA", stage, j.sla)
	body, err := json.Marshal(outcome.Outcome{
		OrderID:       ord.ID(),
		CorrelationID: ord.CorrelationID(),
		Stage:         stage,
		Status:        "FAILED",
		Payload:       outcome.Payload{FailureReason: reason},
	})
	if err != nil {
		j.logger.Error("failed to marshal timeout outcome", zap.Error(err))
		return
	}

	if err := j.publisher.Publish(ctx, stage.InboundTopic(), body); err != nil {
		j.logger.Error("failed to publish timeout outcome",
			zap.String("orderId", ord.ID().String()),
			zap.String("topic", stage.InboundTopic()),
			zap.Error(err))
		return
	}

	audit, err := event.NewEvent(
		ord.ID(),
		ord.CorrelationID(),
		event.TypeStageTimeout,
		event.SourceOrchestrator,
		event.StatusWarning,
		reason,
		j.now(),
	)
	if err != nil {
		j.logger.Error("failed to build timeout audit record", zap.Error(err))
		return
	}
	if err := j.events.Append(ctx, audit); err != nil {
		j.logger.Error("failed to append timeout audit record",
			zap.String("orderId", ord.ID().String()),
			zap.Error(err))
	}

	j.logger.Warn("order stage timed out",
		zap.String("orderId", ord.ID().String()),
		zap.String("status", ord.Status().String()),
		zap.String("stage", string(stage)))
}

// stageFor maps a stuck status onto the stage whose report the order is
// waiting for.
func stageFor(status order.Status) (outcome.Stage, bool) {
	switch status {
	case order.New, order.BillingPending:
		return outcome.StageBilling, true
	case order.Billed, order.Processing:
		return outcome.StageWarehouse, true
	case order.Ready, order.Routing:
		return outcome.StageRouting, true
	case order.Routed:
		return outcome.StageDriver, true
	case order.Assigned, order.InTransit:
		return outcome.StageDelivery, true
	default:
		return "", false
	}
}
