package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	require.ErrorIs(t, err, cause)
	require.Contains(t, domainErr.Error(), "connection reset")
}

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("name is required", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("department", nil), "NOT_FOUND", http.StatusNotFound},
		{NewConflict("name already exists", nil), "CONFLICT", http.StatusConflict},
		{NewInvalidState("record is archived", nil), "INVALID_STATE", http.StatusBadRequest},
	}
	for _, tc := range cases {
		var domainErr *DomainError
		require.ErrorAs(t, tc.err, &domainErr)
		require.Equal(t, tc.code, domainErr.Code)
		require.Equal(t, tc.status, domainErr.HTTPStatus)
	}
}

func TestToDomainErrorMapsStoreErrors(t *testing.T) {
	require.Nil(t, ToDomainError(nil))

	notFound := ToDomainError(fmt.Errorf("fetch: %w", pgx.ErrNoRows))
	require.Equal(t, "NOT_FOUND", notFound.Code)

	conflict := ToDomainError(&pgconn.PgError{Code: "23505"})
	require.Equal(t, "CONFLICT", conflict.Code)

	internal := ToDomainError(errors.New("boom"))
	require.Equal(t, "INTERNAL_ERROR", internal.Code)
	require.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewConflict("department name already exists", map[string]any{"field": "name"})
	mapped := ToDomainError(original)
	require.Same(t, original, mapped)
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsUniqueViolation(errors.New("other")))
}
