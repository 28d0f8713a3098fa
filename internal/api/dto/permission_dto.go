package dto

import "time"

// PermissionRequest payload for create/update.
type PermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PermissionResponse payload.
type PermissionResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ArchivedAt  *time.Time `json:"archivedAt"`
}
