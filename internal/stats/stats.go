// Package stats computes platform-wide numbers for the admin panel.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/syariahos/syariahos-api/internal/models"
	"gorm.io/gorm"
)

// recentWindow is how far back "new" users and recent activity reach.
const recentWindow = 7 * 24 * time.Hour

// ActionCount is the number of log entries for one action.
type ActionCount struct {
	Action string
	Count  int64
}

// Platform is the admin stats payload.
type Platform struct {
	TotalUsers     int64
	AdminUsers     int64
	NewUsers       int64
	TotalTasks     int64
	CompletedTasks int64
	RecurringTasks int64
	DirectoryItems int64
	TotalTools     int64
	ActivityLogs   int64
	RecentActivity int64
	CompletionRate float64
	TopActions     []ActionCount
	GeneratedAt    time.Time
}

// Service reads platform stats.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Platform counts rows across every tenant.
func (s *Service) Platform(ctx context.Context) (Platform, error) {
	now := s.now().UTC()
	since := now.Add(-recentWindow)
	conn := s.db.WithContext(ctx)
	out := Platform{GeneratedAt: now}

	counts := []struct {
		name  string
		query *gorm.DB
		dest  *int64
	}{
		{"users", conn.Model(&models.User{}), &out.TotalUsers},
		{"admins", conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin), &out.AdminUsers},
		{"new users", conn.Model(&models.User{}).Where("created_at >= ?", since), &out.NewUsers},
		{"tasks", conn.Model(&models.Task{}), &out.TotalTasks},
		{"completed tasks", conn.Model(&models.Task{}).Where("completed = ?", true), &out.CompletedTasks},
		{"recurring tasks", conn.Model(&models.Task{}).Where("reset_cycle IS NOT NULL"), &out.RecurringTasks},
		{"directory items", conn.Model(&models.DirectoryItem{}), &out.DirectoryItems},
		{"tools", conn.Model(&models.Tool{}), &out.TotalTools},
		{"activity logs", conn.Model(&models.ActivityLog{}), &out.ActivityLogs},
		{"recent activity", conn.Model(&models.ActivityLog{}).Where("created_at >= ?", since), &out.RecentActivity},
	}
	for _, c := range counts {
		if errCount := c.query.Count(c.dest).Error; errCount != nil {
			return Platform{}, fmt.Errorf("stats: count %s: %w", c.name, errCount)
		}
	}
	if out.TotalTasks > 0 {
		rate := float64(out.CompletedTasks) / float64(out.TotalTasks) * 100
		out.CompletionRate = float64(int64(rate*10+0.5)) / 10
	}

	var top []ActionCount
	if errTop := conn.Model(&models.ActivityLog{}).
		Select("action, COUNT(*) AS count").
		Group("action").
		Order("count DESC").
		Order("action ASC").
		Limit(5).
		Scan(&top).Error; errTop != nil {
		return Platform{}, fmt.Errorf("stats: top actions: %w", errTop)
	}
	out.TopActions = top
	return out, nil
}
