// Package dashboard aggregates a user's tasks into KPIs, goals and trends.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/syariahos/syariahos-api/internal/models"
	"gorm.io/gorm"
)

// trendDays is the length of the trend window, today included.
const trendDays = 7

// uncategorized labels tasks without a category.
const uncategorized = "Lainnya"

// KPI holds headline numbers.
type KPI struct {
	TotalTasks      int
	CompletedTasks  int
	CompletionRate  float64
	AverageProgress int
	ActiveRecurring int
	GoalsCompleted  int
}

// Goal is a has-limit task with its numeric progress.
type Goal struct {
	TaskID       uint64
	Text         string
	Category     string
	CurrentValue int
	TargetValue  int
	Unit         string
	Progress     int
	Completed    bool
}

// CategoryBreakdown counts tasks per category.
type CategoryBreakdown struct {
	Category  string
	Total     int
	Completed int
}

// TrendPoint sums one day of progress events.
type TrendPoint struct {
	Date   string
	Value  int
	Events int
}

// Summary is the dashboard payload.
type Summary struct {
	KPI        KPI
	Goals      []Goal
	Categories []CategoryBreakdown
	Trend      []TrendPoint
}

// Service computes dashboards.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Summary loads the owner's tasks and recent history and aggregates them.
func (s *Service) Summary(ctx context.Context, userID uint64) (Summary, error) {
	conn := s.db.WithContext(ctx)
	var rows []models.Task
	if errTasks := conn.Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; errTasks != nil {
		return Summary{}, fmt.Errorf("dashboard: load tasks: %w", errTasks)
	}
	now := s.now().UTC()
	since := startOfDay(now).AddDate(0, 0, -(trendDays - 1))
	var history []models.TaskHistory
	if errHistory := conn.Where("user_id = ? AND created_at >= ?", userID, since).Find(&history).Error; errHistory != nil {
		return Summary{}, fmt.Errorf("dashboard: load history: %w", errHistory)
	}
	return Aggregate(rows, history, now), nil
}

// Aggregate computes a Summary from already-loaded rows.
func Aggregate(rows []models.Task, history []models.TaskHistory, now time.Time) Summary {
	out := Summary{Goals: []Goal{}, Categories: []CategoryBreakdown{}}
	byCategory := map[string]*CategoryBreakdown{}
	progressSum := 0

	for _, task := range rows {
		out.KPI.TotalTasks++
		progressSum += task.Progress
		if task.Completed {
			out.KPI.CompletedTasks++
		}
		if task.ResetCycle != nil {
			out.KPI.ActiveRecurring++
		}

		label := task.Category
		if label == "" {
			label = uncategorized
		}
		breakdown := byCategory[label]
		if breakdown == nil {
			breakdown = &CategoryBreakdown{Category: label}
			byCategory[label] = breakdown
		}
		breakdown.Total++
		if task.Completed {
			breakdown.Completed++
		}

		if task.HasLimit && task.TargetValue != nil {
			goal := Goal{
				TaskID:       task.ID,
				Text:         task.Text,
				Category:     task.Category,
				CurrentValue: task.CurrentValue,
				TargetValue:  *task.TargetValue,
				Progress:     task.Progress,
				Completed:    task.Completed,
			}
			if task.Unit != nil {
				goal.Unit = *task.Unit
			}
			if goal.Completed {
				out.KPI.GoalsCompleted++
			}
			out.Goals = append(out.Goals, goal)
		}
	}

	if out.KPI.TotalTasks > 0 {
		rate := float64(out.KPI.CompletedTasks) / float64(out.KPI.TotalTasks) * 100
		out.KPI.CompletionRate = math.Round(rate*10) / 10
		out.KPI.AverageProgress = int(math.Round(float64(progressSum) / float64(out.KPI.TotalTasks)))
	}

	for _, breakdown := range byCategory {
		out.Categories = append(out.Categories, *breakdown)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		if out.Categories[i].Total != out.Categories[j].Total {
			return out.Categories[i].Total > out.Categories[j].Total
		}
		return out.Categories[i].Category < out.Categories[j].Category
	})
	sort.SliceStable(out.Goals, func(i, j int) bool {
		return out.Goals[i].Progress > out.Goals[j].Progress
	})

	out.Trend = trend(history, now)
	return out
}

func trend(history []models.TaskHistory, now time.Time) []TrendPoint {
	start := startOfDay(now.UTC()).AddDate(0, 0, -(trendDays - 1))
	points := make([]TrendPoint, trendDays)
	index := make(map[string]int, trendDays)
	for i := range points {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		points[i].Date = date
		index[date] = i
	}
	for _, row := range history {
		i, ok := index[row.CreatedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		points[i].Value += row.Value
		points[i].Events++
	}
	return points
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
