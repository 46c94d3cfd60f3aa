package listeners

import (
	"context"

	"makerspace/internal/auditlog"
	"makerspace/internal/events"
	"makerspace/pkg/eventbus"

	"go.uber.org/zap"
)

// AuditListener mirrors audit rows into the application log so operators see
// failures without querying the audit table.
type AuditListener struct {
	logger *zap.Logger
}

func NewAuditListener(logger *zap.Logger) *AuditListener {
	return &AuditListener{logger: logger}
}

func (l *AuditListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.AuditLogCreated, l.handleAuditLogCreated)
}

func (l *AuditListener) handleAuditLogCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.AuditLogCreatedEvent)
	if !ok {
		return nil
	}
	fields := []zap.Field{zap.Uint64("auditLogID", e.Log.ID), zap.String("message", e.Log.Message)}
	if e.Log.Category != nil {
		fields = append(fields, zap.String("category", *e.Log.Category))
	}
	if auditlog.IsError(e.Log.Message) {
		l.logger.Error("audit error recorded", fields...)
		return nil
	}
	l.logger.Debug("audit recorded", fields...)
	return nil
}
