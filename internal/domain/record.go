package domain

// EntityKind names a record table managed by the lifecycle engine.
type EntityKind string

const (
	KindDepartment EntityKind = "department"
	KindEmployee   EntityKind = "employee"
	KindPermission EntityKind = "permission"
)

// Lifecycle states. A record is active while archived_at is null, archived
// once it is set, and purged records no longer exist in the store.
type RecordState string

const (
	StateActive   RecordState = "active"
	StateArchived RecordState = "archived"
)
