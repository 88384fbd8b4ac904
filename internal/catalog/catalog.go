// Package catalog manages the Islamic-finance tool catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syariahos/syariahos-api/internal/activity"
	dbutil "github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned for missing tools.
var ErrNotFound = errors.New("catalog: tool not found")

// Input holds the writable fields of a tool.
type Input struct {
	Name               string
	Category           string
	Description        string
	Inputs             []string
	Outputs            []string
	Benefits           []string
	ShariaBasis        string
	Link               string
	RelatedDirectories []string
	Sources            []models.ToolSource
}

// Filter narrows public listings.
type Filter struct {
	Category string
	Search   string
}

// Service implements catalog reads and admin writes.
type Service struct {
	db       *gorm.DB
	recorder *activity.Recorder
}

// NewService constructs a Service.
func NewService(db *gorm.DB, recorder *activity.Recorder) *Service {
	return &Service{db: db, recorder: recorder}
}

// List returns tools by category then name.
func (s *Service) List(ctx context.Context, filter Filter) ([]models.Tool, error) {
	q := s.db.WithContext(ctx).Model(&models.Tool{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := dbutil.ContainsPattern(s.db, search)
		q = q.Where(
			"("+dbutil.CaseInsensitiveLikeExpr(s.db, "name")+" OR "+dbutil.CaseInsensitiveLikeExpr(s.db, "description")+")",
			pattern,
			pattern,
		)
	}
	var rows []models.Tool
	if errFind := q.Order("category ASC").Order("name ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("catalog: list: %w", errFind)
	}
	return rows, nil
}

// Categories returns the distinct tool categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if errPluck := s.db.WithContext(ctx).Model(&models.Tool{}).Distinct("category").Order("category ASC").Pluck("category", &out).Error; errPluck != nil {
		return nil, fmt.Errorf("catalog: categories: %w", errPluck)
	}
	return out, nil
}

// Get returns one tool.
func (s *Service) Get(ctx context.Context, id uint64) (models.Tool, error) {
	return find(s.db.WithContext(ctx), id)
}

func find(tx *gorm.DB, id uint64) (models.Tool, error) {
	var tool models.Tool
	if errFind := tx.First(&tool, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.Tool{}, ErrNotFound
		}
		return models.Tool{}, fmt.Errorf("catalog: find: %w", errFind)
	}
	return tool, nil
}

// Create adds a tool on behalf of actor.
func (s *Service) Create(ctx context.Context, actor activity.Actor, in Input) (models.Tool, error) {
	var out models.Tool
	errTx := s.recorder.Within(ctx, actor, func(tx *gorm.DB) (activity.Entry, error) {
		var tool models.Tool
		if errApply := apply(&tool, in); errApply != nil {
			return activity.Entry{}, errApply
		}
		if errCreate := tx.Create(&tool).Error; errCreate != nil {
			return activity.Entry{}, fmt.Errorf("catalog: create: %w", errCreate)
		}
		out = tool
		return activity.Entry{
			Action:   activity.ActionToolCreated,
			Subject:  activity.On(activity.SubjectTool, tool.ID),
			Metadata: map[string]any{"name": tool.Name},
		}, nil
	})
	return out, errTx
}

// Update rewrites a tool on behalf of actor.
func (s *Service) Update(ctx context.Context, actor activity.Actor, id uint64, in Input) (models.Tool, error) {
	var out models.Tool
	errTx := s.recorder.Within(ctx, actor, func(tx *gorm.DB) (activity.Entry, error) {
		tool, errFind := find(tx, id)
		if errFind != nil {
			return activity.Entry{}, errFind
		}
		if errApply := apply(&tool, in); errApply != nil {
			return activity.Entry{}, errApply
		}
		if errSave := tx.Save(&tool).Error; errSave != nil {
			return activity.Entry{}, fmt.Errorf("catalog: update: %w", errSave)
		}
		out = tool
		return activity.Entry{
			Action:   activity.ActionToolUpdated,
			Subject:  activity.On(activity.SubjectTool, tool.ID),
			Metadata: map[string]any{"name": tool.Name},
		}, nil
	})
	return out, errTx
}

// Delete removes a tool on behalf of actor.
func (s *Service) Delete(ctx context.Context, actor activity.Actor, id uint64) error {
	return s.recorder.Within(ctx, actor, func(tx *gorm.DB) (activity.Entry, error) {
		tool, errFind := find(tx, id)
		if errFind != nil {
			return activity.Entry{}, errFind
		}
		if errDelete := tx.Delete(&models.Tool{}, tool.ID).Error; errDelete != nil {
			return activity.Entry{}, fmt.Errorf("catalog: delete: %w", errDelete)
		}
		return activity.Entry{
			Action:   activity.ActionToolDeleted,
			Subject:  activity.On(activity.SubjectTool, tool.ID),
			Metadata: map[string]any{"name": tool.Name},
		}, nil
	})
}

func apply(tool *models.Tool, in Input) error {
	fieldErrs := validation.Errors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fieldErrs.Add("name", "The name field is required.")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		fieldErrs.Add("category", "The category field is required.")
	}
	sources := make([]models.ToolSource, 0, len(in.Sources))
	for i, source := range in.Sources {
		title := strings.TrimSpace(source.Title)
		if title == "" {
			fieldErrs.Add(fmt.Sprintf("sources.%d.title", i), "The source title field is required.")
			continue
		}
		sources = append(sources, models.ToolSource{
			Title:     title,
			Reference: strings.TrimSpace(source.Reference),
			URL:       strings.TrimSpace(source.URL),
		})
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}

	tool.Name = name
	tool.Category = category
	tool.Description = strings.TrimSpace(in.Description)
	tool.Inputs = normalizeList(in.Inputs)
	tool.Outputs = normalizeList(in.Outputs)
	tool.Benefits = normalizeList(in.Benefits)
	tool.ShariaBasis = strings.TrimSpace(in.ShariaBasis)
	tool.Link = strings.TrimSpace(in.Link)
	tool.RelatedDirectories = normalizeList(in.RelatedDirectories)
	tool.Sources = datatypes.JSONSlice[models.ToolSource](sources)
	return nil
}

// normalizeList trims entries and drops blanks and duplicates.
func normalizeList(values []string) datatypes.JSONSlice[string] {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	return datatypes.JSONSlice[string](cleaned)
}
