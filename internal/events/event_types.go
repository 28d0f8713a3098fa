package events

import (
	"time"

	"github.com/spec-kit/records-service/internal/domain"
)

// EventType identifies a lifecycle event.
type EventType string

const (
	EventRecordCreated  EventType = "record.created"
	EventRecordUpdated  EventType = "record.updated"
	EventRecordArchived EventType = "record.archived"
	EventRecordRestored EventType = "record.restored"
	EventRecordPurged   EventType = "record.purged"
)

// Event describes a completed lifecycle transition.
type Event struct {
	ID        string
	Type      EventType
	Entity    domain.EntityKind
	RecordID  string
	Timestamp time.Time
	Payload   any
}

// RecordCreatedPayload carries creation details.
type RecordCreatedPayload struct {
	Label string
}

// RecordUpdatedPayload carries update details.
type RecordUpdatedPayload struct {
	Label string
}

// BatchPayload carries per-batch transition counts.
type BatchPayload struct {
	Requested int
	Done      int
	Skipped   int
}
