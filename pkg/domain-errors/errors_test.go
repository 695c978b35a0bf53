package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCodeSeesWrappedCodes(t *testing.T) {
	inner := New(CodeInsertFailed, "profile insert rejected")
	outer := Wrap(inner, CodeUnexpected, "create account failed")

	assert.True(t, HasCode(outer, CodeUnexpected))
	assert.True(t, HasCode(outer, CodeInsertFailed))
	assert.False(t, HasCode(outer, CodePermissionDenied))
}

func TestCodeOfNonDomainError(t *testing.T) {
	assert.Equal(t, CodeUnexpected, CodeOf(errors.New("driver: bad connection")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Wrap(cause, CodeFetchFailed, "failed to load profile")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeFetchFailed, CodeOf(err))
	assert.Contains(t, err.Error(), "FETCH_FAILED")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDetailsDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeDependentCleanupFailed, "booking delete failed")
	detailed := base.WithDetails(map[string]any{"removed": 2})

	assert.Nil(t, base.Details)
	assert.Equal(t, 2, detailed.Details["removed"])
	assert.Equal(t, map[string]any{"removed": 2}, DetailsOf(detailed))
	assert.Nil(t, DetailsOf(base))
}
