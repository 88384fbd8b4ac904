package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestAggregate(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC)
	daily := models.ResetCycleDaily
	rows := []models.Task{
		{ID: 1, Text: "Sholat", Category: "Ibadah", Completed: true, Progress: 100, ResetCycle: &daily},
		{ID: 2, Text: "Tilawah", Category: "Ibadah", HasLimit: true, CurrentValue: 5, TargetValue: intPtr(10), Unit: strPtr("halaman"), Progress: 50},
		{ID: 3, Text: "Tabungan", Category: "Keuangan", HasLimit: true, CurrentValue: 10, TargetValue: intPtr(10), Unit: strPtr("Rp"), Progress: 100, Completed: true},
		{ID: 4, Text: "Lain-lain"},
	}
	history := []models.TaskHistory{
		{TaskID: 2, Value: 3, CreatedAt: now.Add(-time.Hour)},
		{TaskID: 2, Value: 2, CreatedAt: now.Add(-2 * time.Hour)},
		{TaskID: 3, Value: 10, CreatedAt: now.AddDate(0, 0, -6)},
		{TaskID: 3, Value: 99, CreatedAt: now.AddDate(0, 0, -7)},
	}

	summary := Aggregate(rows, history, now)
	assert.Equal(t, 4, summary.KPI.TotalTasks)
	assert.Equal(t, 2, summary.KPI.CompletedTasks)
	assert.Equal(t, 50.0, summary.KPI.CompletionRate)
	assert.Equal(t, 63, summary.KPI.AverageProgress)
	assert.Equal(t, 1, summary.KPI.ActiveRecurring)
	assert.Equal(t, 1, summary.KPI.GoalsCompleted)

	require.Len(t, summary.Goals, 2)
	assert.Equal(t, uint64(3), summary.Goals[0].TaskID)

	require.Len(t, summary.Categories, 3)
	assert.Equal(t, CategoryBreakdown{Category: "Ibadah", Total: 2, Completed: 1}, summary.Categories[0])

	require.Len(t, summary.Trend, 7)
	assert.Equal(t, "2026-05-14", summary.Trend[0].Date)
	assert.Equal(t, 10, summary.Trend[0].Value)
	assert.Equal(t, "2026-05-20", summary.Trend[6].Date)
	assert.Equal(t, 5, summary.Trend[6].Value)
	assert.Equal(t, 2, summary.Trend[6].Events)
}

func TestSummary_OnlyOwnerRows(t *testing.T) {
	conn := dbtest.Open(t)
	owner := models.User{Name: "O", Email: "o@example.com", Password: "hash"}
	other := models.User{Name: "X", Email: "x@example.com", Password: "hash"}
	require.NoError(t, conn.Create(&owner).Error)
	require.NoError(t, conn.Create(&other).Error)
	require.NoError(t, conn.Create(&models.Task{UserID: owner.ID, Text: "Mine", Completed: true, Progress: 100}).Error)
	require.NoError(t, conn.Create(&models.Task{UserID: other.ID, Text: "Theirs"}).Error)

	summary, err := NewService(conn).Summary(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.KPI.TotalTasks)
	assert.Equal(t, 100.0, summary.KPI.CompletionRate)
}
