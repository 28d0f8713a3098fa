package service

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/records-service/pkg/util/errorutil"
)

// requiredField is one entry of a per-entity required-field schema. Schemas
// are evaluated in declaration order so the first failing field is
// deterministic.
type requiredField struct {
	Name    string
	Present bool
}

func presentString(value string) bool {
	return strings.TrimSpace(value) != ""
}

func presentTime(value time.Time) bool {
	return !value.IsZero()
}

// validateRequired rejects the first absent or blank field. Whitespace-only
// values count as absent.
func validateRequired(fields []requiredField) error {
	for _, field := range fields {
		if !field.Present {
			return apperrors.NewValidationError(field.Name+" is required", map[string]any{
				"field": field.Name,
			})
		}
	}
	return nil
}

// validatePaging rejects non-positive pagination parameters.
func validatePaging(page, pageSize int) error {
	if page <= 0 {
		return apperrors.NewValidationError("invalid page number", map[string]any{"page": page})
	}
	if pageSize <= 0 {
		return apperrors.NewValidationError("invalid page size", map[string]any{"pageSize": pageSize})
	}
	return nil
}

// validateBatchIDs rejects an empty or malformed id set. Individual ids that
// are merely unknown are the batch operation's partial-success business, not
// a validation failure.
func validateBatchIDs(ids []string) error {
	if len(ids) == 0 {
		return apperrors.NewValidationError("ids are required", nil)
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return apperrors.NewValidationError("ids must not contain blank entries", nil)
		}
	}
	return nil
}

func stateLabel(archived bool) string {
	if archived {
		return "archived"
	}
	return "active"
}
