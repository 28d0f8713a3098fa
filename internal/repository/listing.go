package repository

import "time"

// ListParams bounds a paginated, searchable listing query.
type ListParams struct {
	Search string
	Limit  int
	Offset int
}

// AllFilter restricts an unpaginated full listing.
type AllFilter struct {
	IncludeArchived bool
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
