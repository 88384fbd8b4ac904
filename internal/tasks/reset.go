package tasks

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/metrics"
	"github.com/syariahos/syariahos-api/internal/models"
	"gorm.io/gorm"
)

// ShouldReset reports whether task is due for a reset at now. Tasks without
// a cycle or with an unknown cycle are never due.
func ShouldReset(task *models.Task, now time.Time) bool {
	if task == nil || task.ResetCycle == nil {
		return false
	}
	days, ok := ThresholdDays(*task.ResetCycle)
	if !ok {
		return false
	}
	if task.LastResetAt == nil {
		return true
	}
	return task.LastResetAt.Before(cutoff(now, days))
}

func cutoff(now time.Time, days int) time.Time {
	return now.UTC().Add(-time.Duration(days) * 24 * time.Hour)
}

// resetFields returns the column values written by a reset.
func resetFields(now time.Time) map[string]any {
	return map[string]any{
		"completed":     false,
		"current_value": 0,
		"progress":      0,
		"last_reset_at": now,
		"updated_at":    now,
	}
}

// Resetter returns recurring tasks to their baseline.
type Resetter struct {
	db       *gorm.DB
	recorder *activity.Recorder
	now      func() time.Time
}

// NewResetter constructs a Resetter. recorder may be nil.
func NewResetter(db *gorm.DB, recorder *activity.Recorder) *Resetter {
	return &Resetter{db: db, recorder: recorder, now: time.Now}
}

// ResetEligibleTasks resets every due task and returns how many changed.
// Each task is updated on its own; a failure leaves earlier updates in place
// and a rerun finishes the rest.
func (r *Resetter) ResetEligibleTasks(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("tasks: nil resetter")
	}
	now := r.now().UTC()
	total := 0
	for _, cycle := range Cycles {
		days, _ := ThresholdDays(cycle)
		var ids []uint64
		if errFind := r.db.WithContext(ctx).Model(&models.Task{}).
			Where("reset_cycle = ?", cycle).
			Where("last_reset_at IS NULL OR last_reset_at < ?", cutoff(now, days)).
			Order("id ASC").
			Pluck("id", &ids).Error; errFind != nil {
			metrics.ResetSweepsTotal.WithLabelValues("error").Inc()
			return total, fmt.Errorf("tasks: select %s tasks: %w", cycle, errFind)
		}
		for _, id := range ids {
			if errUpdate := r.db.WithContext(ctx).Model(&models.Task{}).
				Where("id = ?", id).
				Updates(resetFields(now)).Error; errUpdate != nil {
				metrics.ResetSweepsTotal.WithLabelValues("error").Inc()
				metrics.TasksResetTotal.Add(float64(total))
				return total, fmt.Errorf("tasks: reset task %d: %w", id, errUpdate)
			}
			total++
		}
	}
	metrics.ResetSweepsTotal.WithLabelValues("ok").Inc()
	metrics.TasksResetTotal.Add(float64(total))

	if total > 0 && r.recorder != nil {
		if errLog := r.recorder.Record(ctx, activity.System, activity.Entry{
			Action:   activity.ActionResetSweep,
			Subject:  activity.Subject{Kind: activity.SubjectSystem},
			Metadata: map[string]any{"count": total},
		}); errLog != nil {
			log.WithError(errLog).Warn("task reset: record sweep failed")
		}
	}
	return total, nil
}

// ResetTask resets a single task regardless of eligibility.
func (r *Resetter) ResetTask(ctx context.Context, task *models.Task) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("tasks: nil resetter")
	}
	if task == nil || task.ID == 0 {
		return ErrNotFound
	}
	now := r.now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(resetFields(now))
	if res.Error != nil {
		return fmt.Errorf("tasks: reset task %d: %w", task.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	task.Completed = false
	task.CurrentValue = 0
	task.Progress = 0
	task.LastResetAt = &now
	task.UpdatedAt = now
	return nil
}
