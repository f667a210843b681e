package usecase

import (
	"context"
	"testing"

	"starter-api/internal/data/entity"
	"starter-api/internal/dto/request"
	"starter-api/pkg/apperror"
	"starter-api/pkg/mailer"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	h := newHarness(t, utils.EnvDevelopment)
	ctx := context.Background()

	resp, err := h.user.Create(ctx, &request.UserCreateRequest{
		Email:    "Mod@Example.com",
		Password: strPtr("s3cret-pass"),
	}, entity.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, "mod@example.com", resp.Email)
	assert.Equal(t, entity.RoleModerator, resp.Role)

	_, err = h.user.Create(ctx, &request.UserCreateRequest{Email: "mod@example.com"}, entity.RoleCustomer)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	waitForMail(t, h, mailer.KindNewAccount, 1)
}

func TestUserService_ArchiveHidesFromDefaultList(t *testing.T) {
	h := newHarness(t, utils.EnvDevelopment)
	ctx := context.Background()
	jane := h.seedUser(t, "jane@example.com", "")
	h.seedUser(t, "john@example.com", "")

	archived, err := h.user.Archive(ctx, jane.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	page := request.PageQuery{Limit: request.DefaultLimit}
	active, err := h.user.List(ctx, page, false)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Count)

	all, err := h.user.List(ctx, page, true)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Count)

	restored, err := h.user.Unarchive(ctx, jane.ID)
	require.NoError(t, err)
	assert.False(t, restored.Archived)
}

func TestUserService_UpdateMe(t *testing.T) {
	h := newHarness(t, utils.EnvDevelopment)
	ctx := context.Background()
	jane := h.seedUser(t, "jane@example.com", "")
	h.seedUser(t, "john@example.com", "")

	resp, err := h.user.UpdateMe(ctx, jane.ID, &request.UserUpdateRequest{
		FirstName: strPtr("Janet"),
		City:      strPtr("Lyon"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", resp.FirstName)

	_, err = h.user.UpdateMe(ctx, jane.ID, &request.UserUpdateRequest{Email: strPtr("JOHN@example.com")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	stored, err := h.users.FindByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)
	require.NotNil(t, stored.City)
	assert.Equal(t, "Lyon", *stored.City)
}

func TestUserService_AdminUpdateChangesRole(t *testing.T) {
	h := newHarness(t, utils.EnvDevelopment)
	jane := h.seedUser(t, "jane@example.com", "")

	role := "admin"
	confirmed := true
	resp, err := h.user.Update(context.Background(), jane.ID, &request.UserAdminUpdateRequest{
		Role:      &role,
		Confirmed: &confirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.Role)
	assert.True(t, resp.Confirmed)
}

func TestUserService_NotFound(t *testing.T) {
	h := newHarness(t, utils.EnvDevelopment)
	ctx := context.Background()
	missing := uuid.New()

	_, err := h.user.GetByID(ctx, missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = h.user.Archive(ctx, missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, h.user.Delete(ctx, missing), apperror.ErrNotFound)
}
