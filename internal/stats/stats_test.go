package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
)

func TestPlatform_Counts(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(conn)
	now := time.Now().UTC()
	svc.now = func() time.Time { return now }

	admin := models.User{Name: "Admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin}
	user := models.User{Name: "User", Email: "user@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, conn.Create(&admin).Error)
	require.NoError(t, conn.Create(&user).Error)

	daily := models.ResetCycleDaily
	require.NoError(t, conn.Create(&[]models.Task{
		{UserID: user.ID, Text: "a", Completed: true},
		{UserID: user.ID, Text: "b", ResetCycle: &daily},
		{UserID: admin.ID, Text: "c"},
	}).Error)
	require.NoError(t, conn.Create(&[]models.ActivityLog{
		{UserID: &user.ID, Action: "user.registered"},
		{UserID: &admin.ID, Action: "tool.created"},
		{UserID: &admin.ID, Action: "tool.created"},
	}).Error)

	got, err := svc.Platform(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.TotalUsers)
	assert.EqualValues(t, 1, got.AdminUsers)
	assert.EqualValues(t, 2, got.NewUsers)
	assert.EqualValues(t, 3, got.TotalTasks)
	assert.EqualValues(t, 1, got.CompletedTasks)
	assert.EqualValues(t, 1, got.RecurringTasks)
	assert.Equal(t, 33.3, got.CompletionRate)
	assert.EqualValues(t, 3, got.ActivityLogs)
	require.Len(t, got.TopActions, 2)
	assert.Equal(t, ActionCount{Action: "tool.created", Count: 2}, got.TopActions[0])
	assert.Positive(t, got.TotalTools)
}
