package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dew-13/solestyle/internal/models"
	"github.com/dew-13/solestyle/internal/store"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("secret")

	token, err := v.Issue("user-1", time.Hour)
	require.NoError(t, err)

	userID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret")

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewVerifier("other").Issue("user-1", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Issue("user-1", -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWithoutSecret(t *testing.T) {
	_, err := NewVerifier("").Verify("x.y.z")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	v := NewVerifier("secret")
	r := &Resolver{Verifier: v, Users: mem}

	customer, err := mem.CreateUser(ctx, &models.User{Email: "c@example.com", Name: "Customer"})
	require.NoError(t, err)
	admin, err := mem.CreateUser(ctx, &models.User{Email: "a@example.com", Name: "Admin", IsAdmin: true})
	require.NoError(t, err)

	customerToken, err := v.Issue(customer.ID, time.Hour)
	require.NoError(t, err)
	adminToken, err := v.Issue(admin.ID, time.Hour)
	require.NoError(t, err)
	ghostToken, err := v.Issue("ghost", time.Hour)
	require.NoError(t, err)

	id, err := r.ResolveUserID(ctx, customerToken)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, id)

	_, err = r.ResolveAdmin(ctx, customerToken)
	assert.ErrorIs(t, err, ErrNotAdmin)

	got, err := r.ResolveAdmin(ctx, adminToken)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	_, err = r.ResolveUserID(ctx, ghostToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
