package service

import "time"

// ListOptions carries pagination and search input for state-aware listings.
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
}

// AllOptions restricts an unpaginated full listing used for export and
// lookup-assist purposes.
type AllOptions struct {
	IncludeArchived bool
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// Page is one slice of a filtered listing plus its pagination bookkeeping.
type Page[T any] struct {
	Items       []T
	TotalPages  int
	CurrentPage int
}

func newPage[T any](items []T, total int64, opts ListOptions) Page[T] {
	totalPages := int((total + int64(opts.PageSize) - 1) / int64(opts.PageSize))
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		TotalPages:  totalPages,
		CurrentPage: opts.Page,
	}
}

func (o ListOptions) offset() int {
	return (o.Page - 1) * o.PageSize
}

// BatchResult partitions a batch transition into the ids that changed state
// and the ids that were skipped (missing, or already in the target state).
type BatchResult struct {
	Done    []string
	Skipped []string
}
