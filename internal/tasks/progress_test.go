package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/models"
)

func TestComputeProgress(t *testing.T) {
	assert.Equal(t, 0, ComputeProgress(0, 10))
	assert.Equal(t, 33, ComputeProgress(1, 3))
	assert.Equal(t, 67, ComputeProgress(2, 3))
	assert.Equal(t, 100, ComputeProgress(10, 10))
	assert.Equal(t, 100, ComputeProgress(15, 10))
	assert.Equal(t, 0, ComputeProgress(5, 0))
}

func TestApplyProgress(t *testing.T) {
	task := models.Task{HasLimit: true, TargetValue: intPtr(30), Unit: strPtr("juz")}

	require.NoError(t, ApplyProgress(&task, 10))
	assert.Equal(t, 10, task.CurrentValue)
	assert.Equal(t, 33, task.Progress)
	assert.False(t, task.Completed)

	require.NoError(t, ApplyProgress(&task, 25))
	assert.Equal(t, 35, task.CurrentValue)
	assert.Equal(t, 100, task.Progress)
	assert.True(t, task.Completed)
}

func TestApplyProgress_RequiresLimit(t *testing.T) {
	task := models.Task{Text: "Sholat"}
	assert.ErrorIs(t, ApplyProgress(&task, 1), ErrNoLimit)
}

func TestSetCompleted(t *testing.T) {
	limited := models.Task{HasLimit: true, TargetValue: intPtr(4), CurrentValue: 1}
	setCompleted(&limited, true)
	assert.Equal(t, 4, limited.CurrentValue)
	assert.True(t, limited.Completed)
	assert.Equal(t, 100, limited.Progress)

	setCompleted(&limited, false)
	assert.Zero(t, limited.CurrentValue)
	assert.False(t, limited.Completed)

	plain := models.Task{}
	setCompleted(&plain, true)
	assert.True(t, plain.Completed)
	assert.Equal(t, 100, plain.Progress)
}

func TestParseCycle(t *testing.T) {
	cycle, err := ParseCycle("one-time")
	require.NoError(t, err)
	assert.Nil(t, cycle)

	cycle, err = ParseCycle(" Weekly ")
	require.NoError(t, err)
	require.NotNil(t, cycle)
	assert.Equal(t, models.ResetCycleWeekly, *cycle)
	assert.Equal(t, "weekly", CycleLabel(cycle))
	assert.Equal(t, CycleOneTime, CycleLabel(nil))

	_, err = ParseCycle("hourly")
	assert.ErrorIs(t, err, ErrInvalidCycle)
}
