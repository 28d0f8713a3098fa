package dto

// PagedResponse wraps one listing page with its pagination bookkeeping.
type PagedResponse[T any] struct {
	Data        []T `json:"data"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// BatchIDsRequest carries the id set of a batch operation.
type BatchIDsRequest struct {
	IDs []string `json:"ids"`
}

// BatchArchiveResponse partitions a batch archive outcome.
type BatchArchiveResponse struct {
	ArchivedIDs []string `json:"archivedIds"`
	SkippedIDs  []string `json:"skippedIds"`
}

// BatchRestoreResponse partitions a batch restore outcome.
type BatchRestoreResponse struct {
	RestoredIDs []string `json:"restoredIds"`
	SkippedIDs  []string `json:"skippedIds"`
}
