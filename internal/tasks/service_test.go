package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
)

func TestService_CreateEnforcesLimitFields(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn, "limit@example.com")
	svc := NewService(conn)

	_, err := svc.Create(context.Background(), user.ID, Input{Text: "Tabungan", HasLimit: true})
	fieldErrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "target_value")
	assert.Contains(t, fieldErrs, "unit")

	_, err = svc.Create(context.Background(), user.ID, Input{Text: "Tabungan", ResetCycle: "hourly"})
	fieldErrs, ok = validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "reset_cycle")
}

func TestService_CreateStampsRecurringTasks(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn, "stamp@example.com")
	svc := NewService(conn)
	now := time.Now().UTC().Truncate(time.Second)
	svc.now = func() time.Time { return now }

	recurring, err := svc.Create(context.Background(), user.ID, Input{Text: "Dzikir pagi", ResetCycle: "daily"})
	require.NoError(t, err)
	require.NotNil(t, recurring.LastResetAt)
	assert.Equal(t, now, *recurring.LastResetAt)

	oneTime, err := svc.Create(context.Background(), user.ID, Input{Text: "Umrah", ResetCycle: "one-time"})
	require.NoError(t, err)
	assert.Nil(t, oneTime.ResetCycle)
	assert.Nil(t, oneTime.LastResetAt)
}

func TestService_AddProgressAndHistoryCorrections(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn, "progress@example.com")
	svc := NewService(conn)
	ctx := context.Background()

	task, err := svc.Create(ctx, user.ID, Input{
		Text:           "Tilawah",
		HasLimit:       true,
		TargetValue:    intPtr(20),
		Unit:           strPtr("halaman"),
		IncrementValue: 5,
	})
	require.NoError(t, err)

	task, first, err := svc.AddProgress(ctx, user.ID, task.ID, ProgressInput{Note: "subuh"})
	require.NoError(t, err)
	assert.Equal(t, 5, task.CurrentValue)
	assert.Equal(t, 25, task.Progress)
	assert.Equal(t, 5, first.Value)

	task, _, err = svc.AddProgress(ctx, user.ID, task.ID, ProgressInput{Amount: intPtr(15)})
	require.NoError(t, err)
	assert.Equal(t, 20, task.CurrentValue)
	assert.Equal(t, 100, task.Progress)
	assert.True(t, task.Completed)

	task, corrected, err := svc.UpdateHistory(ctx, user.ID, task.ID, first.ID, HistoryInput{Value: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, corrected.Value)
	assert.Equal(t, "subuh", corrected.Note)
	assert.Equal(t, 17, task.CurrentValue)
	assert.Equal(t, 85, task.Progress)
	assert.False(t, task.Completed)

	task, err = svc.DeleteHistory(ctx, user.ID, task.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, task.CurrentValue)
	assert.Equal(t, 75, task.Progress)

	history, err := svc.History(ctx, user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 15, history[0].Value)

	_, err = svc.DeleteHistory(ctx, user.ID, task.ID, first.ID)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestService_AddProgressWithoutLimit(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn, "nolimit@example.com")
	svc := NewService(conn)

	task, err := svc.Create(context.Background(), user.ID, Input{Text: "Sholat"})
	require.NoError(t, err)
	_, _, err = svc.AddProgress(context.Background(), user.ID, task.ID, ProgressInput{})
	assert.ErrorIs(t, err, ErrNoLimit)
}

func TestService_PatchCompletion(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn, "patch@example.com")
	svc := NewService(conn)
	ctx := context.Background()

	plain, err := svc.Create(ctx, user.ID, Input{Text: "Sedekah subuh"})
	require.NoError(t, err)
	plain, err = svc.Patch(ctx, user.ID, plain.ID, Patch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, plain.Completed)
	assert.Equal(t, 100, plain.Progress)

	perCheck, err := svc.Create(ctx, user.ID, Input{
		Text:              "Istighfar",
		HasLimit:          true,
		TargetValue:       intPtr(300),
		Unit:              strPtr("kali"),
		IncrementPerCheck: true,
		IncrementValue:    100,
	})
	require.NoError(t, err)
	perCheck, err = svc.Patch(ctx, user.ID, perCheck.ID, Patch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 100, perCheck.CurrentValue)
	assert.Equal(t, 33, perCheck.Progress)
	assert.False(t, perCheck.Completed)

	history, err := svc.History(ctx, user.ID, perCheck.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 100, history[0].Value)

	renamed, err := svc.Patch(ctx, user.ID, perCheck.ID, Patch{Text: strPtr("Istighfar harian")})
	require.NoError(t, err)
	assert.Equal(t, "Istighfar harian", renamed.Text)
	assert.Equal(t, 100, renamed.CurrentValue)
}

func TestService_OwnerScoping(t *testing.T) {
	conn := dbtest.Open(t)
	owner := seedUser(t, conn, "owner@example.com")
	other := seedUser(t, conn, "other@example.com")
	svc := NewService(conn)
	ctx := context.Background()

	task, err := svc.Create(ctx, owner.ID, Input{Text: "A-only", Category: "Ibadah"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Patch(ctx, other.ID, task.ID, Patch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, task.ID), ErrNotFound)

	rows, err := svc.List(ctx, other.ID, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = svc.List(ctx, owner.ID, ListFilter{Search: "a-ONLY", Category: "Ibadah", ResetCycle: CycleOneTime})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, svc.Delete(ctx, owner.ID, task.ID))
	var count int64
	require.NoError(t, conn.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateAll_PrefixesFieldErrors(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn, "bulk@example.com")

	_, err := CreateAll(conn, user.ID, []Input{{Text: "ok"}, {Text: ""}}, time.Now())
	fieldErrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "tasks.1.text")

	created, err := CreateAll(conn, user.ID, []Input{{Text: "Sholat dhuha", ResetCycle: "daily"}, {Text: "Infaq"}}, time.Now())
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.NotZero(t, created[0].ID)
}

func boolPtr(v bool) *bool { return &v }
