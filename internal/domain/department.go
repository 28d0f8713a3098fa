package domain

import "time"

// Department represents a high-level organizational unit.
type Department struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
}

// Archived reports whether the department is soft-deleted.
func (d *Department) Archived() bool {
	return d.ArchivedAt != nil
}
