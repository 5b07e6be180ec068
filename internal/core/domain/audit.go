package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// AuditAction identifies a recorded directory event.
type AuditAction string

const (
	AuditUserCreated    AuditAction = "user.created"
	AuditUserUpdated    AuditAction = "user.updated"
	AuditUserDeleted    AuditAction = "user.deleted"
	AuditLoginSucceeded AuditAction = "login.succeeded"
)

// AuditEvent is an append-only record of a user lifecycle event. ActorID is
// zero when the action was performed anonymously (public signup).
type AuditEvent struct {
	bun.BaseModel `bun:"table:audit_events,alias:ae"`

	ID        string      `json:"id" bun:"id,pk"`
	Action    AuditAction `json:"action" bun:"action,notnull"`
	SubjectID int64       `json:"subject_id" bun:"subject_id,notnull"`
	ActorID   int64       `json:"actor_id,omitempty" bun:"actor_id"`
	CreatedAt time.Time   `json:"created_at" bun:"created_at,notnull"`
}
