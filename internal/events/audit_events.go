package events

import "makerspace/internal/entities"

const AuditLogCreated = "audit.log.created"

// AuditLogCreatedEvent is published once an audit row is durably stored.
type AuditLogCreatedEvent struct {
	Log entities.AuditLog
}

func (e AuditLogCreatedEvent) Name() string {
	return AuditLogCreated
}
