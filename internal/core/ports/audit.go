package ports

import (
	"context"

	"github.com/userhub/directory-api/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	Record(ctx context.Context, event *domain.AuditEvent) error
}

// AuditSink accepts audit events for asynchronous recording. Enqueue must
// never block the calling request; an overloaded sink drops the event.
type AuditSink interface {
	Enqueue(event domain.AuditEvent)
}
