package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/books-api/internal/domain"
)

func TestDefaultPolicy_Requirements(t *testing.T) {
	policy := DefaultPolicy()

	adminOnly := []string{OpBooksCreate, OpBooksUpdate, OpBooksDelete, OpUsersCreate, OpUsersList}
	for _, op := range adminOnly {
		assert.True(t, policy.Allows(op, domain.RoleAdmin), "%s should allow ADMIN", op)
		assert.False(t, policy.Allows(op, domain.RoleUser), "%s should reject USER", op)
	}

	anyAuthenticated := []string{OpBooksList, OpBooksGet, OpReviewsList, OpReviewsCreate}
	for _, op := range anyAuthenticated {
		assert.True(t, policy.Allows(op, domain.RoleAdmin), "%s should allow ADMIN", op)
		assert.True(t, policy.Allows(op, domain.RoleUser), "%s should allow USER", op)
	}
}

func TestDefaultPolicy_ClosedWorld(t *testing.T) {
	policy := DefaultPolicy()

	assert.False(t, policy.Allows("books.publish", domain.RoleAdmin))
	assert.Error(t, policy.Covers("books.publish"))
}

func TestDefaultPolicy_Covers(t *testing.T) {
	policy := DefaultPolicy()
	require.NoError(t, policy.Covers(
		OpBooksList, OpBooksGet, OpBooksCreate, OpBooksUpdate, OpBooksDelete,
		OpReviewsList, OpReviewsCreate, OpUsersList, OpUsersCreate,
	))
}
