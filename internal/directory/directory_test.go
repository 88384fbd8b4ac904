package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
)

func idPtr(v uint64) *uint64 { return &v }

func TestBuildTree_OrdersAndAdoptsOrphans(t *testing.T) {
	rows := []models.DirectoryItem{
		{ID: 1, Name: "Muamalah", Type: models.DirectoryTypeFolder, SortOrder: 2},
		{ID: 2, Name: "Ibadah", Type: models.DirectoryTypeFolder, SortOrder: 1},
		{ID: 3, ParentID: idPtr(1), Name: "Riba", Type: models.DirectoryTypeItem},
		{ID: 4, ParentID: idPtr(1), Name: "Akad", Type: models.DirectoryTypeItem},
		{ID: 5, ParentID: idPtr(99), Name: "Orphan", Type: models.DirectoryTypeItem, SortOrder: 3},
	}
	roots := BuildTree(rows)
	require.Len(t, roots, 3)
	assert.Equal(t, "Ibadah", roots[0].Item.Name)
	assert.Equal(t, "Muamalah", roots[1].Item.Name)
	assert.Equal(t, "Orphan", roots[2].Item.Name)
	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, "Akad", roots[1].Children[0].Item.Name)
}

func TestService_CycleGuard(t *testing.T) {
	conn := dbtest.Open(t)
	user := models.User{Name: "U", Email: "dir@example.com", Password: "hash"}
	require.NoError(t, conn.Create(&user).Error)
	svc := NewService(conn)
	ctx := context.Background()

	root, err := svc.Create(ctx, user.ID, Input{Name: "Fiqh", Type: models.DirectoryTypeFolder})
	require.NoError(t, err)
	child, err := svc.Create(ctx, user.ID, Input{Name: "Muamalah", Type: models.DirectoryTypeFolder, ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.Create(ctx, user.ID, Input{Name: "Jual Beli", Type: models.DirectoryTypeFolder, ParentID: &child.ID})
	require.NoError(t, err)

	_, err = svc.Update(ctx, user.ID, root.ID, Input{Name: "Fiqh", Type: models.DirectoryTypeFolder, ParentID: &grandchild.ID})
	fieldErrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "parent_id")

	_, err = svc.Update(ctx, user.ID, root.ID, Input{Name: "Fiqh", Type: models.DirectoryTypeFolder, ParentID: &root.ID})
	_, ok = validation.As(err)
	assert.True(t, ok)

	moved, err := svc.Update(ctx, user.ID, grandchild.ID, Input{Name: "Jual Beli", Type: models.DirectoryTypeFolder})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestService_ParentMustBeOwnedFolder(t *testing.T) {
	conn := dbtest.Open(t)
	owner := models.User{Name: "O", Email: "owner@example.com", Password: "hash"}
	other := models.User{Name: "X", Email: "other@example.com", Password: "hash"}
	require.NoError(t, conn.Create(&owner).Error)
	require.NoError(t, conn.Create(&other).Error)
	svc := NewService(conn)
	ctx := context.Background()

	leaf, err := svc.Create(ctx, owner.ID, Input{
		Name:    "Riba",
		Type:    models.DirectoryTypeItem,
		Content: &models.DirectoryContent{Dalil: "QS. Al-Baqarah: 275", Source: "Al-Quran"},
	})
	require.NoError(t, err)
	require.NotNil(t, leaf.Content)
	assert.Equal(t, "Al-Quran", leaf.Content.Data().Source)

	_, err = svc.Create(ctx, owner.ID, Input{Name: "Child", Type: models.DirectoryTypeItem, ParentID: &leaf.ID})
	_, ok := validation.As(err)
	assert.True(t, ok)

	_, err = svc.Create(ctx, other.ID, Input{Name: "Sneaky", Type: models.DirectoryTypeItem, ParentID: &leaf.ID})
	_, ok = validation.As(err)
	assert.True(t, ok)

	_, err = svc.Update(ctx, other.ID, leaf.ID, Input{Name: "Mine", Type: models.DirectoryTypeItem})
	assert.ErrorIs(t, err, ErrNotFound)

	tree, err := svc.Tree(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestService_DeleteSubtree(t *testing.T) {
	conn := dbtest.Open(t)
	user := models.User{Name: "U", Email: "delete@example.com", Password: "hash"}
	require.NoError(t, conn.Create(&user).Error)
	svc := NewService(conn)
	ctx := context.Background()

	root, err := svc.Create(ctx, user.ID, Input{Name: "Aqidah", Type: models.DirectoryTypeFolder})
	require.NoError(t, err)
	child, err := svc.Create(ctx, user.ID, Input{Name: "Tauhid", Type: models.DirectoryTypeFolder, ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.ID, Input{Name: "Rububiyah", Type: models.DirectoryTypeItem, ParentID: &child.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.ID, Input{Name: "Akhlak", Type: models.DirectoryTypeFolder})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, user.ID, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	tree, err := svc.Tree(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Akhlak", tree[0].Item.Name)
}
