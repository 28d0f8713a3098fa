package domain

import "time"

// Permission represents a named capability assignable within the organization.
type Permission struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
}

// Archived reports whether the permission is soft-deleted.
func (p *Permission) Archived() bool {
	return p.ArchivedAt != nil
}
