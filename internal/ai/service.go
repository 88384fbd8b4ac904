package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/dashboard"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/tasks"
	"gorm.io/gorm"
)

// maxHistory bounds the chat turns forwarded to the provider.
const maxHistory = 20

const (
	chatInstruction = "Kamu adalah asisten SyariahOS. Jawab dalam Bahasa Indonesia dengan ringkas, " +
		"berlandaskan prinsip keuangan syariah, dan sertakan dalil bila relevan."
	planInstruction = "Susun rencana aksi bertahap dalam format markdown untuk mencapai tujuan pengguna. " +
		"Gunakan daftar bernomor, target yang terukur, dan siklus harian, mingguan, bulanan atau tahunan bila cocok."
	insightInstruction = "Berikan tiga wawasan singkat dan satu saran perbaikan berdasarkan ringkasan progres berikut."
)

// Service implements the assistant operations.
type Service struct {
	db        *gorm.DB
	recorder  *activity.Recorder
	generator Generator
	dashboard *dashboard.Service
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB, recorder *activity.Recorder, generator Generator, dash *dashboard.Service) *Service {
	return &Service{db: db, recorder: recorder, generator: generator, dashboard: dash, now: time.Now}
}

// Chat answers message given the prior turns.
func (s *Service) Chat(ctx context.Context, message string, history []Message) (string, error) {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	turns := make([]Message, 0, len(history)+1)
	for _, turn := range history {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		turns = append(turns, turn)
	}
	turns = append(turns, Message{Role: RoleUser, Text: strings.TrimSpace(message)})
	reply, errGenerate := s.generator.Generate(ctx, "chat", chatInstruction, turns)
	if errGenerate != nil {
		return "", errGenerate
	}
	return strings.TrimSpace(reply), nil
}

// GeneratePlan drafts a markdown plan for goal.
func (s *Service) GeneratePlan(ctx context.Context, goal string) (string, error) {
	reply, errGenerate := s.generator.Generate(ctx, "plan", planInstruction, []Message{
		{Role: RoleUser, Text: "Tujuan: " + strings.TrimSpace(goal)},
	})
	if errGenerate != nil {
		return "", errGenerate
	}
	return StripCodeFence(reply), nil
}

// Insight comments on the caller's dashboard summary.
func (s *Service) Insight(ctx context.Context, userID uint64) (string, error) {
	summary, errSummary := s.dashboard.Summary(ctx, userID)
	if errSummary != nil {
		return "", errSummary
	}
	reply, errGenerate := s.generator.Generate(ctx, "insight", insightInstruction, []Message{
		{Role: RoleUser, Text: DescribeSummary(summary)},
	})
	if errGenerate != nil {
		return "", errGenerate
	}
	return StripCodeFence(reply), nil
}

// AcceptPlan creates the plan's tasks for userID in one logged transaction.
func (s *Service) AcceptPlan(ctx context.Context, userID uint64, inputs []tasks.Input) ([]models.Task, error) {
	var created []models.Task
	errTx := s.recorder.Within(ctx, activity.ByUser(userID), func(tx *gorm.DB) (activity.Entry, error) {
		rows, errCreate := tasks.CreateAll(tx, userID, inputs, s.now().UTC())
		if errCreate != nil {
			return activity.Entry{}, errCreate
		}
		created = rows
		return activity.Entry{
			Action:   activity.ActionPlanAccepted,
			Subject:  activity.On(activity.SubjectUser, userID),
			Metadata: map[string]any{"count": len(rows)},
		}, nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return created, nil
}

// DescribeSummary renders a dashboard summary as prompt text.
func DescribeSummary(summary dashboard.Summary) string {
	var b strings.Builder
	kpi := summary.KPI
	fmt.Fprintf(&b, "Total tugas: %d, selesai: %d (%.1f%%), rata-rata progres: %d%%, tugas berulang aktif: %d.\n",
		kpi.TotalTasks, kpi.CompletedTasks, kpi.CompletionRate, kpi.AverageProgress, kpi.ActiveRecurring)
	if len(summary.Goals) > 0 {
		b.WriteString("Target:\n")
		for _, goal := range summary.Goals {
			fmt.Fprintf(&b, "- %s: %d/%d %s (%d%%)\n", goal.Text, goal.CurrentValue, goal.TargetValue, goal.Unit, goal.Progress)
		}
	}
	if len(summary.Categories) > 0 {
		b.WriteString("Kategori:\n")
		for _, category := range summary.Categories {
			fmt.Fprintf(&b, "- %s: %d/%d selesai\n", category.Category, category.Completed, category.Total)
		}
	}
	if len(summary.Trend) > 0 {
		b.WriteString("Aktivitas 7 hari:")
		for _, point := range summary.Trend {
			fmt.Fprintf(&b, " %s=%d", point.Date, point.Value)
		}
		b.WriteString("\n")
	}
	return b.String()
}
