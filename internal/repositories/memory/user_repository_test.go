package memory

import (
	"context"
	"testing"

	"distress-server/internal/models"
	"distress-server/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserRepository_UniqueEmailAndPhone(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@b.com", PhoneNumber: "+111", Role: models.RoleUser}))

	err := repo.Create(ctx, &models.User{Email: "a@b.com", PhoneNumber: "+222"})
	assert.ErrorIs(t, err, utils.ErrDuplicateKey)

	err = repo.Create(ctx, &models.User{Email: "c@d.com", PhoneNumber: "+111"})
	assert.ErrorIs(t, err, utils.ErrDuplicateKey)
}

func TestUserRepository_UpdateAndConflict(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	first := &models.User{Email: "a@b.com", PhoneNumber: "+111", Role: models.RoleUser}
	second := &models.User{Email: "c@d.com", PhoneNumber: "+222", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	name := "Ada"
	updated, err := repo.Update(ctx, first.ID, &models.UserUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FullName)
	assert.Equal(t, "a@b.com", updated.Email)

	taken := "c@d.com"
	_, err = repo.Update(ctx, first.ID, &models.UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, utils.ErrDuplicateKey)

	_, err = repo.Update(ctx, primitive.NewObjectID(), &models.UserUpdate{FullName: &name})
	assert.ErrorIs(t, err, utils.ErrRecordNotFound)
}

func TestUserRepository_ListByRoleAndDelete(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	admin := &models.User{Email: "admin@x.com", PhoneNumber: "+1", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "u@x.com", PhoneNumber: "+2", Role: models.RoleUser}))

	admins, err := repo.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.ID, admins[0].ID)

	found, err := repo.GetByEmail(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, admin.ID))
	_, err = repo.GetByID(ctx, admin.ID)
	assert.ErrorIs(t, err, utils.ErrRecordNotFound)
}
