package categories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/categories"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
)

func TestCategories_UniquePerOwner(t *testing.T) {
	conn := dbtest.Open(t)
	first := models.User{Name: "A", Email: "a@example.com", Password: "hash"}
	second := models.User{Name: "B", Email: "b@example.com", Password: "hash"}
	require.NoError(t, conn.Create(&first).Error)
	require.NoError(t, conn.Create(&second).Error)

	svc := categories.NewService(conn)
	ctx := context.Background()

	created, err := svc.Create(ctx, first.ID, " Zakat ", "#16a34a")
	require.NoError(t, err)
	assert.Equal(t, "Zakat", created.Name)

	_, err = svc.Create(ctx, first.ID, "Zakat", "")
	fieldErrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "name")

	_, err = svc.Create(ctx, second.ID, "Zakat", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, second.ID, created.ID), categories.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, first.ID, created.ID))

	rows, err := svc.List(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
