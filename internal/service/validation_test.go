package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/records-service/pkg/util/errorutil"
)

func TestValidateRequiredReportsFirstFailure(t *testing.T) {
	err := validateRequired([]requiredField{
		{Name: "name", Present: true},
		{Name: "description", Present: false},
		{Name: "category", Present: false},
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "description is required", domainErr.Message)
	require.Equal(t, "description", domainErr.Details["field"])

	require.NoError(t, validateRequired([]requiredField{
		{Name: "name", Present: true},
	}))
}

func TestValidatePaging(t *testing.T) {
	require.NoError(t, validatePaging(1, 10))
	require.Error(t, validatePaging(0, 10))
	require.Error(t, validatePaging(-3, 10))
	require.Error(t, validatePaging(1, 0))
	require.Error(t, validatePaging(1, -5))
}

func TestValidateBatchIDs(t *testing.T) {
	require.NoError(t, validateBatchIDs([]string{"a", "b"}))
	require.Error(t, validateBatchIDs(nil))
	require.Error(t, validateBatchIDs([]string{}))
	require.Error(t, validateBatchIDs([]string{"a", "   "}))
}

func TestNewPageMath(t *testing.T) {
	page := newPage([]int{1, 2, 3}, 12, ListOptions{Page: 2, PageSize: 5})
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 2, page.CurrentPage)

	empty := newPage[int](nil, 0, ListOptions{Page: 1, PageSize: 10})
	require.NotNil(t, empty.Items)
	require.Empty(t, empty.Items)
	require.Equal(t, 0, empty.TotalPages)
}
