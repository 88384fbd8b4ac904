package tasks

import (
	"math"

	"github.com/syariahos/syariahos-api/internal/models"
)

// ComputeProgress returns round(current/target*100) clamped to 0..100.
func ComputeProgress(current, target int) int {
	if target <= 0 {
		return 0
	}
	pct := int(math.Round(float64(current) / float64(target) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// DefaultIncrement is the amount added when a caller supplies none.
func DefaultIncrement(task *models.Task) int {
	if task == nil || task.IncrementValue < 1 {
		return 1
	}
	return task.IncrementValue
}

// ApplyProgress adds amount to a has-limit task and recomputes its
// progress and completion.
func ApplyProgress(task *models.Task, amount int) error {
	if task == nil || !task.HasLimit || task.TargetValue == nil || *task.TargetValue <= 0 {
		return ErrNoLimit
	}
	task.CurrentValue += amount
	if task.CurrentValue < 0 {
		task.CurrentValue = 0
	}
	syncProgress(task)
	return nil
}

// syncProgress derives progress and completion from the current value.
func syncProgress(task *models.Task) {
	if !task.HasLimit || task.TargetValue == nil || *task.TargetValue <= 0 {
		return
	}
	task.Progress = ComputeProgress(task.CurrentValue, *task.TargetValue)
	task.Completed = task.CurrentValue >= *task.TargetValue
}

// setCompleted toggles completion. Has-limit tasks move their current value
// to the target or back to zero so progress stays consistent.
func setCompleted(task *models.Task, completed bool) {
	if task.HasLimit && task.TargetValue != nil && *task.TargetValue > 0 {
		target := *task.TargetValue
		switch {
		case completed && task.CurrentValue < target:
			task.CurrentValue = target
		case !completed && task.CurrentValue >= target:
			task.CurrentValue = 0
		}
		syncProgress(task)
		return
	}
	task.Completed = completed
	if completed {
		task.Progress = 100
	} else {
		task.Progress = 0
	}
}
