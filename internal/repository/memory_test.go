package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/userauth/internal/models"
)

func TestMemoryRepositoryEnforcesUniqueEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := &models.User{FullName: "A", Email: "a@x.com", PhoneNumber: "0123456789"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	err := repo.Create(ctx, &models.User{FullName: "B", Email: "a@x.com", PhoneNumber: "0987654321"})
	assert.ErrorIs(t, err, ErrDuplicate)

	second := &models.User{FullName: "B", Email: "b@x.com", PhoneNumber: "0987654321"}
	require.NoError(t, repo.Create(ctx, second))

	err = repo.UpdateAccount(ctx, second.ID, models.UserUpdate{Email: models.Some("a@x.com")}, models.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.UpdateAccount(ctx, first.ID, models.UserUpdate{Email: models.Some("a@x.com")}, models.ProfileUpdate{}))
}

func TestMemoryRepositoryUpdatePasswordIsCompareAndSwap(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user := &models.User{FullName: "A", Email: "a@x.com", PhoneNumber: "0123456789", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new", 0))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, user.ID, "newer", 0), ErrStaleVersion)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.PasswordHash)
	assert.Equal(t, 1, stored.ResetVersion)
}

func TestMemoryRepositoryProfileIsCreatedLazily(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user := &models.User{FullName: "A", Email: "a@x.com", PhoneNumber: "0123456789"}
	require.NoError(t, repo.Create(ctx, user))

	loaded, err := repo.FindWithProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.Profile)

	require.NoError(t, repo.UpdateAccount(ctx, user.ID, models.UserUpdate{}, models.ProfileUpdate{CompanyName: models.Some("Acme")}))
	require.NoError(t, repo.UpdateAccount(ctx, user.ID, models.UserUpdate{}, models.ProfileUpdate{DateOfBirth: models.Some("1990-01-01")}))

	loaded, err = repo.FindWithProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Profile)
	assert.Equal(t, "Acme", *loaded.Profile.CompanyName)
	assert.Equal(t, "1990-01-01", *loaded.Profile.DateOfBirth)

	assert.ErrorIs(t, repo.UpdateAccount(ctx, uuid.New(), models.UserUpdate{}, models.ProfileUpdate{}), ErrNotFound)
}
