package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dbutil "github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/gorm"
)

// Input carries the full set of writable task fields.
type Input struct {
	Text              string
	Category          string
	Completed         bool
	HasLimit          bool
	CurrentValue      int
	TargetValue       *int
	Unit              *string
	ResetCycle        string
	IncrementPerCheck bool
	IncrementValue    int
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Text              *string
	Category          *string
	Completed         *bool
	HasLimit          *bool
	CurrentValue      *int
	TargetValue       *int
	Unit              *string
	ResetCycle        *string
	IncrementPerCheck *bool
	IncrementValue    *int
}

// ListFilter narrows task listings.
type ListFilter struct {
	Category   string
	Completed  *bool
	ResetCycle string
	Search     string
}

// ProgressInput is one progress event. A nil Amount uses the task's increment.
type ProgressInput struct {
	Amount *int
	Note   string
}

// HistoryInput corrects a recorded progress event.
type HistoryInput struct {
	Value int
	Note  *string
}

// Service implements the owner-scoped task operations.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// NewTask builds an unsaved task for userID from in.
func NewTask(userID uint64, in Input, now time.Time) (models.Task, error) {
	task := models.Task{UserID: userID}
	if errApply := applyInput(&task, in, now); errApply != nil {
		return models.Task{}, errApply
	}
	return task, nil
}

// CreateAll inserts tasks built from inputs using tx.
func CreateAll(tx *gorm.DB, userID uint64, inputs []Input, now time.Time) ([]models.Task, error) {
	out := make([]models.Task, 0, len(inputs))
	for i, in := range inputs {
		task, errBuild := NewTask(userID, in, now)
		if errBuild != nil {
			return nil, prefixErrors(errBuild, fmt.Sprintf("tasks.%d.", i))
		}
		out = append(out, task)
	}
	if len(out) == 0 {
		return out, nil
	}
	if errCreate := tx.Create(&out).Error; errCreate != nil {
		return nil, fmt.Errorf("tasks: create: %w", errCreate)
	}
	return out, nil
}

// applyInput writes in onto task, enforcing the has-limit invariant.
func applyInput(task *models.Task, in Input, now time.Time) error {
	fieldErrs := validation.Errors{}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		fieldErrs.Add("text", "The text field is required.")
	}
	cycle, errCycle := ParseCycle(in.ResetCycle)
	if errCycle != nil {
		fieldErrs.Add("reset_cycle", "The selected reset cycle is invalid.")
	}
	var unit *string
	if in.Unit != nil {
		if trimmed := strings.TrimSpace(*in.Unit); trimmed != "" {
			unit = &trimmed
		}
	}
	if in.HasLimit {
		if in.TargetValue == nil || *in.TargetValue <= 0 {
			fieldErrs.Add("target_value", "The target value field is required when has limit is true.")
		}
		if unit == nil {
			fieldErrs.Add("unit", "The unit field is required when has limit is true.")
		}
	}
	if in.CurrentValue < 0 {
		fieldErrs.Add("current_value", "The current value field must be at least 0.")
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}

	task.Text = text
	task.Category = strings.TrimSpace(in.Category)
	task.HasLimit = in.HasLimit
	task.IncrementPerCheck = in.IncrementPerCheck
	task.IncrementValue = in.IncrementValue
	if task.IncrementValue < 1 {
		task.IncrementValue = 1
	}

	if !sameCycle(task.ResetCycle, cycle) || (cycle != nil && task.LastResetAt == nil) {
		if cycle != nil {
			stamp := now.UTC()
			task.LastResetAt = &stamp
		} else {
			task.LastResetAt = nil
		}
	}
	task.ResetCycle = cycle

	if in.HasLimit {
		target := *in.TargetValue
		task.TargetValue = &target
		task.Unit = unit
		task.CurrentValue = in.CurrentValue
		syncProgress(task)
		return nil
	}
	task.TargetValue = nil
	task.Unit = nil
	task.CurrentValue = 0
	setCompleted(task, in.Completed)
	return nil
}

func sameCycle(a, b *models.ResetCycle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// inputFrom captures a task's writable fields.
func inputFrom(task models.Task) Input {
	return Input{
		Text:              task.Text,
		Category:          task.Category,
		Completed:         task.Completed,
		HasLimit:          task.HasLimit,
		CurrentValue:      task.CurrentValue,
		TargetValue:       task.TargetValue,
		Unit:              task.Unit,
		ResetCycle:        CycleLabel(task.ResetCycle),
		IncrementPerCheck: task.IncrementPerCheck,
		IncrementValue:    task.IncrementValue,
	}
}

func prefixErrors(err error, prefix string) error {
	fieldErrs, ok := validation.As(err)
	if !ok {
		return err
	}
	out := validation.Errors{}
	for field, msgs := range fieldErrs {
		out[prefix+field] = msgs
	}
	return out
}

// List returns the owner's tasks, newest first.
func (s *Service) List(ctx context.Context, userID uint64, filter ListFilter) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("category = ?", category)
	}
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	switch cycle := strings.TrimSpace(filter.ResetCycle); cycle {
	case "":
	case CycleOneTime:
		q = q.Where("reset_cycle IS NULL")
	default:
		q = q.Where("reset_cycle = ?", cycle)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(s.db, "text"), dbutil.ContainsPattern(s.db, search))
	}
	var rows []models.Task
	if errFind := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("tasks: list: %w", errFind)
	}
	return rows, nil
}

// Get returns one owned task.
func (s *Service) Get(ctx context.Context, userID, id uint64) (models.Task, error) {
	return findOwned(s.db.WithContext(ctx), userID, id)
}

func findOwned(tx *gorm.DB, userID, id uint64) (models.Task, error) {
	var task models.Task
	if errFind := tx.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("tasks: find: %w", errFind)
	}
	return task, nil
}

// Create inserts a new task for the owner.
func (s *Service) Create(ctx context.Context, userID uint64, in Input) (models.Task, error) {
	task, errBuild := NewTask(userID, in, s.now())
	if errBuild != nil {
		return models.Task{}, errBuild
	}
	if errCreate := s.db.WithContext(ctx).Create(&task).Error; errCreate != nil {
		return models.Task{}, fmt.Errorf("tasks: create: %w", errCreate)
	}
	return task, nil
}

// Update replaces every writable field of an owned task.
func (s *Service) Update(ctx context.Context, userID, id uint64, in Input) (models.Task, error) {
	var out models.Task
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		if errApply := applyInput(&task, in, s.now()); errApply != nil {
			return errApply
		}
		if errSave := tx.Save(&task).Error; errSave != nil {
			return fmt.Errorf("tasks: update: %w", errSave)
		}
		out = task
		return nil
	})
	return out, errTx
}

// Patch applies a partial update. Checking a has-limit task that increments
// per check adds its increment as a progress event.
func (s *Service) Patch(ctx context.Context, userID, id uint64, p Patch) (models.Task, error) {
	var out models.Task
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		now := s.now().UTC()

		if p.hasFieldChanges() {
			in := inputFrom(task)
			p.applyTo(&in)
			if errApply := applyInput(&task, in, now); errApply != nil {
				return errApply
			}
		}

		if p.Completed != nil {
			before := task.CurrentValue
			if *p.Completed && !task.Completed && task.HasLimit && task.IncrementPerCheck {
				if errProgress := ApplyProgress(&task, DefaultIncrement(&task)); errProgress != nil {
					return errProgress
				}
			} else {
				setCompleted(&task, *p.Completed)
			}
			if delta := task.CurrentValue - before; delta != 0 {
				note := "Marked complete"
				if delta < 0 {
					note = "Marked incomplete"
				}
				if *p.Completed && task.IncrementPerCheck {
					note = "Checked"
				}
				history := models.TaskHistory{TaskID: task.ID, UserID: userID, Value: delta, Note: note, CreatedAt: now}
				if errHistory := tx.Create(&history).Error; errHistory != nil {
					return fmt.Errorf("tasks: create history: %w", errHistory)
				}
			}
		}

		if errSave := tx.Save(&task).Error; errSave != nil {
			return fmt.Errorf("tasks: patch: %w", errSave)
		}
		out = task
		return nil
	})
	return out, errTx
}

func (p Patch) hasFieldChanges() bool {
	return p.Text != nil || p.Category != nil || p.HasLimit != nil || p.CurrentValue != nil ||
		p.TargetValue != nil || p.Unit != nil || p.ResetCycle != nil ||
		p.IncrementPerCheck != nil || p.IncrementValue != nil
}

func (p Patch) applyTo(in *Input) {
	if p.Text != nil {
		in.Text = *p.Text
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.HasLimit != nil {
		in.HasLimit = *p.HasLimit
	}
	if p.CurrentValue != nil {
		in.CurrentValue = *p.CurrentValue
	}
	if p.TargetValue != nil {
		in.TargetValue = p.TargetValue
	}
	if p.Unit != nil {
		in.Unit = p.Unit
	}
	if p.ResetCycle != nil {
		in.ResetCycle = *p.ResetCycle
	}
	if p.IncrementPerCheck != nil {
		in.IncrementPerCheck = *p.IncrementPerCheck
	}
	if p.IncrementValue != nil {
		in.IncrementValue = *p.IncrementValue
	}
}

// Delete removes an owned task and its history.
func (s *Service) Delete(ctx context.Context, userID, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		if errHistory := tx.Where("task_id = ?", task.ID).Delete(&models.TaskHistory{}).Error; errHistory != nil {
			return fmt.Errorf("tasks: delete history: %w", errHistory)
		}
		if errDelete := tx.Delete(&models.Task{}, task.ID).Error; errDelete != nil {
			return fmt.Errorf("tasks: delete: %w", errDelete)
		}
		return nil
	})
}

// AddProgress records a progress event on an owned has-limit task.
func (s *Service) AddProgress(ctx context.Context, userID, id uint64, in ProgressInput) (models.Task, models.TaskHistory, error) {
	var (
		outTask    models.Task
		outHistory models.TaskHistory
	)
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		amount := DefaultIncrement(&task)
		if in.Amount != nil {
			amount = *in.Amount
		}
		if errProgress := ApplyProgress(&task, amount); errProgress != nil {
			return errProgress
		}
		history := models.TaskHistory{
			TaskID:    task.ID,
			UserID:    userID,
			Value:     amount,
			Note:      strings.TrimSpace(in.Note),
			CreatedAt: s.now().UTC(),
		}
		if errCreate := tx.Create(&history).Error; errCreate != nil {
			return fmt.Errorf("tasks: create history: %w", errCreate)
		}
		if errSave := tx.Save(&task).Error; errSave != nil {
			return fmt.Errorf("tasks: save progress: %w", errSave)
		}
		outTask, outHistory = task, history
		return nil
	})
	return outTask, outHistory, errTx
}

// History lists the progress events of an owned task, newest first.
func (s *Service) History(ctx context.Context, userID, id uint64) ([]models.TaskHistory, error) {
	conn := s.db.WithContext(ctx)
	if _, errFind := findOwned(conn, userID, id); errFind != nil {
		return nil, errFind
	}
	var rows []models.TaskHistory
	if errList := conn.Where("task_id = ?", id).Order("created_at DESC").Order("id DESC").Find(&rows).Error; errList != nil {
		return nil, fmt.Errorf("tasks: list history: %w", errList)
	}
	return rows, nil
}

func findHistory(tx *gorm.DB, taskID, historyID uint64) (models.TaskHistory, error) {
	var history models.TaskHistory
	if errFind := tx.Where("id = ? AND task_id = ?", historyID, taskID).First(&history).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.TaskHistory{}, ErrHistoryNotFound
		}
		return models.TaskHistory{}, fmt.Errorf("tasks: find history: %w", errFind)
	}
	return history, nil
}

// adjust shifts the task's current value by delta and recomputes progress.
func adjust(task *models.Task, delta int) {
	task.CurrentValue += delta
	if task.CurrentValue < 0 {
		task.CurrentValue = 0
	}
	syncProgress(task)
}

// UpdateHistory corrects a progress event and moves the task's current value
// by the difference.
func (s *Service) UpdateHistory(ctx context.Context, userID, id, historyID uint64, in HistoryInput) (models.Task, models.TaskHistory, error) {
	var (
		outTask    models.Task
		outHistory models.TaskHistory
	)
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		history, errHistory := findHistory(tx, task.ID, historyID)
		if errHistory != nil {
			return errHistory
		}
		adjust(&task, in.Value-history.Value)
		history.Value = in.Value
		if in.Note != nil {
			history.Note = strings.TrimSpace(*in.Note)
		}
		if errSave := tx.Save(&history).Error; errSave != nil {
			return fmt.Errorf("tasks: update history: %w", errSave)
		}
		if errSave := tx.Save(&task).Error; errSave != nil {
			return fmt.Errorf("tasks: save task: %w", errSave)
		}
		outTask, outHistory = task, history
		return nil
	})
	return outTask, outHistory, errTx
}

// DeleteHistory removes a progress event and subtracts its value.
func (s *Service) DeleteHistory(ctx context.Context, userID, id, historyID uint64) (models.Task, error) {
	var out models.Task
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		history, errHistory := findHistory(tx, task.ID, historyID)
		if errHistory != nil {
			return errHistory
		}
		if errDelete := tx.Delete(&models.TaskHistory{}, history.ID).Error; errDelete != nil {
			return fmt.Errorf("tasks: delete history: %w", errDelete)
		}
		adjust(&task, -history.Value)
		if errSave := tx.Save(&task).Error; errSave != nil {
			return fmt.Errorf("tasks: save task: %w", errSave)
		}
		out = task
		return nil
	})
	return out, errTx
}
