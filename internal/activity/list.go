package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/syariahos/syariahos-api/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Filter narrows the admin log listing.
type Filter struct {
	Action  string
	UserID  *uint64
	Page    int
	PerPage int
}

// Page is one page of log rows, newest first.
type Page struct {
	Items   []models.ActivityLog
	Total   int64
	Page    int
	PerPage int
}

// LastPage returns the number of the final page.
func (p Page) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (f *Filter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	f.Action = strings.TrimSpace(f.Action)
}

// List returns a page of log rows with their acting users.
func (r *Recorder) List(ctx context.Context, filter Filter) (Page, error) {
	filter.normalize()

	q := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		return Page{}, fmt.Errorf("activity: count logs: %w", errCount)
	}

	var rows []models.ActivityLog
	if errFind := q.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&rows).Error; errFind != nil {
		return Page{}, fmt.Errorf("activity: list logs: %w", errFind)
	}
	return Page{Items: rows, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

// Actions returns the distinct action names present in the log.
func (r *Recorder) Actions(ctx context.Context) ([]string, error) {
	var actions []string
	if errPluck := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Distinct("action").Order("action ASC").Pluck("action", &actions).Error; errPluck != nil {
		return nil, fmt.Errorf("activity: list actions: %w", errPluck)
	}
	return actions, nil
}
