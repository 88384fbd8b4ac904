package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/config"
	"github.com/syariahos/syariahos-api/internal/dashboard"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/tasks"
	"github.com/syariahos/syariahos-api/internal/validation"
	"github.com/tidwall/gjson"
)

func TestClient_GenerateRequestShape(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		captured, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Wa'alaikumussalam"}]}}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.AIConfig{BaseURL: srv.URL, APIKey: "secret", Model: "gemini-test", Timeout: time.Second})
	reply, err := client.Generate(context.Background(), "chat", "be brief", []Message{
		{Role: RoleUser, Text: "Assalamualaikum"},
		{Role: RoleModel, Text: "Ada yang bisa dibantu?"},
		{Role: "system", Text: "lagi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Wa'alaikumussalam", reply)

	assert.Equal(t, "be brief", gjson.GetBytes(captured, "systemInstruction.parts.0.text").String())
	assert.Equal(t, int64(3), gjson.GetBytes(captured, "contents.#").Int())
	assert.Equal(t, "model", gjson.GetBytes(captured, "contents.1.role").String())
	assert.Equal(t, "user", gjson.GetBytes(captured, "contents.2.role").String())
	assert.Equal(t, "lagi", gjson.GetBytes(captured, "contents.2.parts.0.text").String())
}

func TestClient_FailuresAreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(config.AIConfig{BaseURL: srv.URL, APIKey: "k"}).Generate(context.Background(), "chat", "", nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewClient(config.AIConfig{BaseURL: srv.URL}).Generate(context.Background(), "chat", "", nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()
	_, err = NewClient(config.AIConfig{BaseURL: slow.URL, APIKey: "k", Timeout: 20 * time.Millisecond}).
		Generate(context.Background(), "chat", "", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "# Rencana\n1. Sedekah", StripCodeFence("```markdown\n# Rencana\n1. Sedekah\n```"))
	assert.Equal(t, "plain", StripCodeFence("  plain \n"))
	assert.Equal(t, "x", StripCodeFence("```\nx\n```"))
}

type stubGenerator struct {
	reply    string
	err      error
	last     []Message
	lastOp   string
	lastSyst string
}

func (s *stubGenerator) Generate(_ context.Context, operation, system string, messages []Message) (string, error) {
	s.lastOp, s.lastSyst, s.last = operation, system, messages
	return s.reply, s.err
}

func TestService_PlanAndInsight(t *testing.T) {
	conn := dbtest.Open(t)
	user := models.User{Name: "A", Email: "a@example.com", Password: "x"}
	require.NoError(t, conn.Create(&user).Error)
	gen := &stubGenerator{reply: "```md\n1. Tilawah\n```"}
	svc := NewService(conn, activity.NewRecorder(conn), gen, dashboard.NewService(conn))

	plan, err := svc.GeneratePlan(context.Background(), "Khatam Quran")
	require.NoError(t, err)
	assert.Equal(t, "1. Tilawah", plan)
	assert.Equal(t, "plan", gen.lastOp)
	assert.Contains(t, gen.last[0].Text, "Khatam Quran")

	_, err = svc.Insight(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, gen.last[0].Text, "Total tugas: 0")

	gen.err = ErrUnavailable
	_, err = svc.Chat(context.Background(), "halo", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestService_AcceptPlanIsAtomic(t *testing.T) {
	conn := dbtest.Open(t)
	user := models.User{Name: "A", Email: "a@example.com", Password: "x"}
	require.NoError(t, conn.Create(&user).Error)
	svc := NewService(conn, activity.NewRecorder(conn), &stubGenerator{}, dashboard.NewService(conn))
	target := 30

	_, err := svc.AcceptPlan(context.Background(), user.ID, []tasks.Input{
		{Text: "Tilawah 1 juz", ResetCycle: "daily"},
		{Text: "Hafalan", HasLimit: true, TargetValue: &target},
	})
	fieldErrs, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, fieldErrs, "tasks.1.unit")
	var count int64
	require.NoError(t, conn.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)

	unit := "ayat"
	created, err := svc.AcceptPlan(context.Background(), user.ID, []tasks.Input{
		{Text: "Tilawah 1 juz", ResetCycle: "daily"},
		{Text: "Hafalan", HasLimit: true, TargetValue: &target, Unit: &unit},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	page, err := activity.NewRecorder(conn).List(context.Background(), activity.Filter{Action: activity.ActionPlanAccepted})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
}
