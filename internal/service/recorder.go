package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	contractsmq "sprint-tracker/contracts/mq"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
	"sprint-tracker/pkg/logger"
	"sprint-tracker/pkg/metrics"
	"sprint-tracker/pkg/mq"
	"sprint-tracker/pkg/trace"
)

// AuditLog stores write attempts.
type AuditLog interface {
	Record(ctx context.Context, e repository.AuditEntry) error
	Latest(ctx context.Context, limit int) ([]repository.AuditEntry, error)
}

// EventPublisher publishes change events.
type EventPublisher = mq.EventPublisher

// recorder audits every write attempt and publishes an event for each
// successful one. Neither failure is reported to the caller.
type recorder struct {
	audit  AuditLog
	events mq.EventPublisher
	logger *zap.Logger
}

func newRecorder(audit AuditLog, events mq.EventPublisher, logger *zap.Logger) *recorder {
	if audit == nil {
		audit = repository.NopAuditRepository{}
	}
	if events == nil {
		events = mq.NopPublisher{}
	}
	return &recorder{audit: audit, events: events, logger: logger}
}

func (r *recorder) invalid(entity, action string) {
	metrics.IncrementWrite(entity, action, "invalid")
}

func (r *recorder) record(ctx context.Context, sess session.Session, entity, action, key, title string, err error) {
	log := logger.WithTrace(ctx, r.logger)

	outcome := "success"
	detail := ""
	if err != nil {
		outcome = "failed"
		detail = err.Error()
	}
	metrics.IncrementWrite(entity, action, outcome)

	auditErr := r.audit.Record(ctx, repository.AuditEntry{
		Actor:   sess.EmpID,
		Role:    sess.Role,
		Entity:  entity,
		Action:  action,
		Key:     key,
		Outcome: outcome,
		Detail:  detail,
	})
	if auditErr != nil {
		log.Warn("audit record failed", zap.String("entity", entity), zap.Error(auditErr))
	}

	if err != nil {
		log.Error(entity+" "+action+" failed",
			zap.String("key", key),
			zap.String("actor", sess.EmpID),
			zap.Error(err),
		)
		return
	}

	log.Info(entity+" "+action+": success",
		zap.String("key", key),
		zap.String("actor", sess.EmpID),
	)

	event := contractsmq.RecordChanged{
		Entity:     entity,
		Action:     action,
		Key:        key,
		Title:      title,
		ActorEmpID: sess.EmpID,
		TraceID:    trace.FromContext(ctx),
		OccurredAt: time.Now().UTC(),
	}
	if err := r.events.Publish(ctx, event.RoutingKey(), event); err != nil {
		log.Warn("publish change event failed",
			zap.String("routing_key", event.RoutingKey()),
			zap.Error(err),
		)
	}
}
