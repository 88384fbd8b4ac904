// Package export renders admin reports as CSV or printable HTML.
package export

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/stats"
	"gorm.io/gorm"
)

// Report kinds.
const (
	KindUsers = "users"
	KindTools = "tools"
	KindStats = "stats"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
)

var (
	// ErrUnknownKind is returned for unsupported report kinds.
	ErrUnknownKind = errors.New("export: unknown report kind")
	// ErrUnknownFormat is returned for unsupported output formats.
	ErrUnknownFormat = errors.New("export: unknown format")
)

const timestampLayout = "2006-01-02 15:04"

// SummaryLine is one label/value pair of the summary block.
type SummaryLine struct {
	Label string
	Value string
}

// Report is a titled summary block followed by a detail table.
type Report struct {
	Kind        string
	Title       string
	GeneratedAt time.Time
	Summary     []SummaryLine
	Columns     []string
	Rows        [][]string
}

// Filename returns the download name for format.
func (r Report) Filename(format string) string {
	return fmt.Sprintf("syariahos-%s-%s.%s", r.Kind, r.GeneratedAt.Format("20060102-150405"), format)
}

// Service assembles reports from the database.
type Service struct {
	db    *gorm.DB
	stats *stats.Service
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB, statsSvc *stats.Service) *Service {
	return &Service{db: db, stats: statsSvc, now: time.Now}
}

// Build loads the data for kind.
func (s *Service) Build(ctx context.Context, kind string) (Report, error) {
	now := s.now().UTC()
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindUsers:
		var users []models.User
		if errFind := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; errFind != nil {
			return Report{}, fmt.Errorf("export: load users: %w", errFind)
		}
		return UsersReport(users, now), nil
	case KindTools:
		var tools []models.Tool
		if errFind := s.db.WithContext(ctx).Order("category ASC").Order("name ASC").Find(&tools).Error; errFind != nil {
			return Report{}, fmt.Errorf("export: load tools: %w", errFind)
		}
		return ToolsReport(tools, now), nil
	case KindStats:
		platform, errStats := s.stats.Platform(ctx)
		if errStats != nil {
			return Report{}, errStats
		}
		return StatsReport(platform, now), nil
	default:
		return Report{}, ErrUnknownKind
	}
}

// UsersReport lists accounts.
func UsersReport(users []models.User, now time.Time) Report {
	admins := 0
	twoFactor := 0
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			admins++
		}
		if u.TOTPEnabled {
			twoFactor++
		}
		rows = append(rows, []string{
			strconv.FormatUint(u.ID, 10),
			u.Name,
			u.Email,
			u.Role,
			u.Theme,
			yesNo(u.TOTPEnabled),
			u.CreatedAt.UTC().Format(timestampLayout),
		})
	}
	return Report{
		Kind:        KindUsers,
		Title:       "Laporan Pengguna",
		GeneratedAt: now,
		Summary: []SummaryLine{
			{Label: "Total pengguna", Value: strconv.Itoa(len(users))},
			{Label: "Admin", Value: strconv.Itoa(admins)},
			{Label: "Pengguna 2FA", Value: strconv.Itoa(twoFactor)},
		},
		Columns: []string{"ID", "Nama", "Email", "Peran", "Tema", "2FA", "Terdaftar"},
		Rows:    rows,
	}
}

// ToolsReport lists the tool catalog.
func ToolsReport(tools []models.Tool, now time.Time) Report {
	categories := map[string]struct{}{}
	rows := make([][]string, 0, len(tools))
	for _, tool := range tools {
		categories[tool.Category] = struct{}{}
		rows = append(rows, []string{
			strconv.FormatUint(tool.ID, 10),
			tool.Name,
			tool.Category,
			tool.Description,
			strings.Join(tool.Inputs, "; "),
			strings.Join(tool.Outputs, "; "),
			tool.ShariaBasis,
		})
	}
	return Report{
		Kind:        KindTools,
		Title:       "Laporan Katalog Tools",
		GeneratedAt: now,
		Summary: []SummaryLine{
			{Label: "Total tools", Value: strconv.Itoa(len(tools))},
			{Label: "Kategori", Value: strconv.Itoa(len(categories))},
		},
		Columns: []string{"ID", "Nama", "Kategori", "Deskripsi", "Input", "Output", "Dasar Syariah"},
		Rows:    rows,
	}
}

// StatsReport renders platform stats with the top actions as detail rows.
func StatsReport(p stats.Platform, now time.Time) Report {
	rows := make([][]string, 0, len(p.TopActions))
	for _, action := range p.TopActions {
		rows = append(rows, []string{action.Action, strconv.FormatInt(action.Count, 10)})
	}
	return Report{
		Kind:        KindStats,
		Title:       "Laporan Statistik Platform",
		GeneratedAt: now,
		Summary: []SummaryLine{
			{Label: "Total pengguna", Value: strconv.FormatInt(p.TotalUsers, 10)},
			{Label: "Admin", Value: strconv.FormatInt(p.AdminUsers, 10)},
			{Label: "Pengguna baru (7 hari)", Value: strconv.FormatInt(p.NewUsers, 10)},
			{Label: "Total tugas", Value: strconv.FormatInt(p.TotalTasks, 10)},
			{Label: "Tugas selesai", Value: strconv.FormatInt(p.CompletedTasks, 10)},
			{Label: "Tingkat penyelesaian", Value: strconv.FormatFloat(p.CompletionRate, 'f', 1, 64) + "%"},
			{Label: "Tugas berulang", Value: strconv.FormatInt(p.RecurringTasks, 10)},
			{Label: "Item direktori", Value: strconv.FormatInt(p.DirectoryItems, 10)},
			{Label: "Total tools", Value: strconv.FormatInt(p.TotalTools, 10)},
			{Label: "Log aktivitas", Value: strconv.FormatInt(p.ActivityLogs, 10)},
		},
		Columns: []string{"Aksi", "Jumlah"},
		Rows:    rows,
	}
}

func yesNo(v bool) string {
	if v {
		return "Ya"
	}
	return "Tidak"
}
