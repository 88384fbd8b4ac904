package accounts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/security"
	"github.com/syariahos/syariahos-api/internal/validation"
)

func strPtr(v string) *string { return &v }

func TestManager_LastAdminGuards(t *testing.T) {
	conn := dbtest.Open(t)
	mgr := accounts.NewManager(conn, activity.NewRecorder(conn))
	ctx := context.Background()

	admin := accounts.NewUser("Admin", "admin@example.com", "hash", models.RoleAdmin)
	require.NoError(t, conn.Create(&admin).Error)
	actor := activity.ByUser(admin.ID)

	_, err := mgr.Update(ctx, actor, admin.ID, accounts.UpdateInput{Role: strPtr(models.RoleUser)})
	assert.ErrorIs(t, err, accounts.ErrLastAdminDemotion)
	assert.ErrorIs(t, mgr.Remove(ctx, actor, admin.ID), accounts.ErrLastAdmin)

	second, err := mgr.Create(ctx, actor, accounts.CreateInput{
		Name: "Second", Email: "second@example.com", Password: "password123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	var seeded int64
	require.NoError(t, conn.Model(&models.Task{}).Where("user_id = ?", second.ID).Count(&seeded).Error)
	assert.Positive(t, seeded)

	require.NoError(t, mgr.Remove(ctx, actor, second.ID))
	_, err = mgr.Get(ctx, second.ID)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
	require.NoError(t, conn.Model(&models.Task{}).Where("user_id = ?", second.ID).Count(&seeded).Error)
	assert.Zero(t, seeded)

	actions, err := activity.NewRecorder(conn).Actions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{activity.ActionUserCreated, activity.ActionUserDeleted}, actions)
}

func TestManager_CreateValidatesAndUpdates(t *testing.T) {
	conn := dbtest.Open(t)
	mgr := accounts.NewManager(conn, activity.NewRecorder(conn))
	ctx := context.Background()

	_, err := mgr.Create(ctx, activity.System, accounts.CreateInput{Email: "x@example.com", Password: "short", Role: "root"})
	fieldErrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "password")
	assert.Contains(t, fieldErrs, "role")

	user, err := mgr.Create(ctx, activity.System, accounts.CreateInput{Name: "Aisyah", Email: "aisyah@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	_, err = mgr.Create(ctx, activity.System, accounts.CreateInput{Name: "Dup", Email: "AISYAH@example.com", Password: "password123"})
	fieldErrs, ok = validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "email")

	require.NoError(t, conn.Create(&models.AccessToken{UserID: user.ID, JTI: "jti-1", ExpiresAt: user.CreatedAt.AddDate(0, 0, 1)}).Error)
	updated, err := mgr.Update(ctx, activity.System, user.ID, accounts.UpdateInput{
		Name:     strPtr("Aisyah R."),
		Password: strPtr("new-password-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aisyah R.", updated.Name)
	assert.True(t, security.CheckPassword(updated.Password, "new-password-1"))
	var tokens int64
	require.NoError(t, conn.Model(&models.AccessToken{}).Where("user_id = ?", user.ID).Count(&tokens).Error)
	assert.Zero(t, tokens)

	page, err := mgr.List(ctx, accounts.UserFilter{Search: "aisyah"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
}
