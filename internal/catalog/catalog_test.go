package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
)

func TestCatalog_CRUDWithAudit(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(conn, activity.NewRecorder(conn))
	ctx := context.Background()
	admin := models.User{Name: "Admin", Email: "admin@example.com", Password: "hash", Role: models.RoleAdmin}
	require.NoError(t, conn.Create(&admin).Error)
	actor := activity.ByUser(admin.ID)

	_, err := svc.Create(ctx, actor, Input{Sources: []models.ToolSource{{Reference: "x"}}})
	fieldErrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "name")
	assert.Contains(t, fieldErrs, "category")
	assert.Contains(t, fieldErrs, "sources.0.title")

	tool, err := svc.Create(ctx, actor, Input{
		Name:     "Kalkulator Waris",
		Category: "Waris",
		Inputs:   []string{" Harta ", "", "Harta", "Ahli waris"},
		Sources:  []models.ToolSource{{Title: "QS. An-Nisa: 11", Reference: "Al-Quran"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Harta", "Ahli waris"}, []string(tool.Inputs))

	updated, err := svc.Update(ctx, actor, tool.ID, Input{Name: "Kalkulator Faraidh", Category: "Waris"})
	require.NoError(t, err)
	assert.Equal(t, "Kalkulator Faraidh", updated.Name)
	assert.Empty(t, updated.Sources)

	rows, err := svc.List(ctx, Filter{Search: "faraidh"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, svc.Delete(ctx, actor, tool.ID))
	_, err = svc.Get(ctx, tool.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	actions, err := activity.NewRecorder(conn).Actions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{activity.ActionToolCreated, activity.ActionToolDeleted, activity.ActionToolUpdated}, actions)
}
