package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/database/dbtest"
)

func setupAccountRepo(t *testing.T) account.Repository {
	t.Helper()
	return account.NewRepository(dbtest.Setup(t))
}

func strPtr(s string) *string { return &s }

func TestCreate_DefaultsToUserRole(t *testing.T) {
	repo := setupAccountRepo(t)
	ctx := context.Background()

	a := &account.Account{Email: "alice@cafe.test", PasswordHash: strPtr("$2a$04$hash")}
	require.NoError(t, repo.Create(ctx, a))

	assert.NotZero(t, a.ID)
	assert.Equal(t, account.RoleUser, a.Role)
	assert.False(t, a.CreatedAt.IsZero())
	assert.False(t, a.ImageUpdatedAt.IsZero())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := setupAccountRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &account.Account{Email: "dup@cafe.test"}))
	err := repo.Create(ctx, &account.Account{Email: "dup@cafe.test"})

	assert.ErrorIs(t, err, account.ErrDuplicateEmail)
}

func TestGetByEmail_ExactMatch(t *testing.T) {
	repo := setupAccountRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &account.Account{Email: "Bob@cafe.test", Name: strPtr("Bob")}))

	got, err := repo.GetByEmail(ctx, "Bob@cafe.test")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.DisplayName())
	assert.False(t, got.HasPassword())

	_, err = repo.GetByEmail(ctx, "bob@cafe.test")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := setupAccountRepo(t)

	_, err := repo.GetByID(context.Background(), 424242)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestUpdateRole(t *testing.T) {
	repo := setupAccountRepo(t)
	ctx := context.Background()

	a := &account.Account{Email: "carol@cafe.test"}
	require.NoError(t, repo.Create(ctx, a))

	updated, err := repo.UpdateRole(ctx, a.ID, account.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, updated.Role)

	n, err := repo.CountByRole(ctx, account.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.UpdateRole(ctx, a.ID+1000, account.RoleAdmin)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestUpdateProfile_ImageMarker(t *testing.T) {
	repo := setupAccountRepo(t)
	ctx := context.Background()

	a := &account.Account{Email: "dana@cafe.test"}
	require.NoError(t, repo.Create(ctx, a))
	before := a.ImageUpdatedAt

	time.Sleep(5 * time.Millisecond)
	nameOnly, err := repo.UpdateProfile(ctx, a.Email, account.ProfileUpdate{Name: "Dana"})
	require.NoError(t, err)
	assert.Equal(t, "Dana", nameOnly.DisplayName())
	assert.True(t, nameOnly.ImageUpdatedAt.Equal(before), "name-only update keeps the avatar marker")

	time.Sleep(5 * time.Millisecond)
	withImage, err := repo.UpdateProfile(ctx, a.Email, account.ProfileUpdate{Name: "Dana", Image: strPtr("https://img.test/d.png")})
	require.NoError(t, err)
	require.NotNil(t, withImage.Image)
	assert.Equal(t, "https://img.test/d.png", *withImage.Image)
	assert.True(t, withImage.ImageUpdatedAt.After(before))

	cleared, err := repo.UpdateProfile(ctx, a.Email, account.ProfileUpdate{Name: "Dana", Image: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Image)

	_, err = repo.UpdateProfile(ctx, "ghost@cafe.test", account.ProfileUpdate{Name: "x"})
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestListAndCount(t *testing.T) {
	repo := setupAccountRepo(t)
	ctx := context.Background()

	for _, email := range []string{"a@cafe.test", "b@cafe.test", "c@cafe.test"} {
		require.NoError(t, repo.Create(ctx, &account.Account{Email: email}))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	n, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
