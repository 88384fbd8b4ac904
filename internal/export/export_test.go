package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syariahos/syariahos-api/internal/db/dbtest"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/stats"
)

func TestWriteCSV_BOMSummaryThenDetail(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	report := UsersReport([]models.User{
		{ID: 1, Name: "Admin, Utama", Email: "admin@example.com", Role: models.RoleAdmin, Theme: "dark", CreatedAt: now},
		{ID: 2, Name: "User", Email: "user@example.com", Role: models.RoleUser, Theme: "light", TOTPEnabled: true, CreatedAt: now},
	}, now)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, report))
	require.True(t, strings.HasPrefix(buf.String(), "\ufeff"))

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Laporan Pengguna"}, records[0])
	assert.Equal(t, []string{"Ringkasan"}, records[2])
	assert.Equal(t, []string{"Total pengguna", "2"}, records[3])
	assert.Equal(t, []string{"Admin", "1"}, records[4])
	assert.Equal(t, []string{"Pengguna 2FA", "1"}, records[5])
	assert.Equal(t, []string{"Detail"}, records[6])
	assert.Equal(t, report.Columns, records[7])
	assert.Equal(t, "Admin, Utama", records[8][1])
	assert.Len(t, records, 10)
}

func TestWriteCSV_NeutralizesFormulaCells(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	report := UsersReport([]models.User{
		{ID: 1, Name: `=HYPERLINK("http://evil","x")`, Email: "evil@example.com", Role: models.RoleUser, Theme: "light", CreatedAt: now},
		{ID: 2, Name: "+1", Email: "@plus@example.com", Role: models.RoleUser, Theme: "light", CreatedAt: now},
		{ID: 3, Name: "-2", Email: "tab@example.com", Role: models.RoleUser, Theme: "light", CreatedAt: now},
		{ID: 4, Name: "\tcmd", Email: "cr@example.com", Role: models.RoleUser, Theme: "light", CreatedAt: now},
		{ID: 5, Name: "Safe = name", Email: "safe@example.com", Role: models.RoleUser, Theme: "light", CreatedAt: now},
	}, now)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, report))

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	rows := records[len(records)-5:]
	assert.Equal(t, `'=HYPERLINK("http://evil","x")`, rows[0][1])
	assert.Equal(t, "'+1", rows[1][1])
	assert.Equal(t, "'@plus@example.com", rows[1][2])
	assert.Equal(t, "'-2", rows[2][1])
	assert.Equal(t, "'\tcmd", rows[3][1])
	assert.Equal(t, "Safe = name", rows[4][1])

	assert.Equal(t, "'\rx", neutralizeCell("\rx"))
	assert.Equal(t, "", neutralizeCell(""))
}

func TestWriteHTML_EscapesAndHandlesEmpty(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	report := ToolsReport([]models.Tool{{ID: 1, Name: "<script>x</script>", Category: "zakat"}}, now)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report, "HTML"))
	html := buf.String()
	assert.Contains(t, html, "Laporan Katalog Tools")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>x")
	assert.Contains(t, html, "@media print")

	buf.Reset()
	require.NoError(t, WriteHTML(&buf, ToolsReport(nil, now)))
	assert.Contains(t, buf.String(), `colspan="7"`)

	assert.ErrorIs(t, Write(&buf, report, "xlsx"), ErrUnknownFormat)
	assert.Equal(t, "syariahos-tools-20260501-083000.html", report.Filename(FormatHTML))
}

func TestService_Build(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(conn, stats.NewService(conn))
	require.NoError(t, conn.Create(&models.User{Name: "A", Email: "a@example.com", Password: "x"}).Error)

	users, err := svc.Build(context.Background(), "users")
	require.NoError(t, err)
	assert.Len(t, users.Rows, 1)

	platform, err := svc.Build(context.Background(), "stats")
	require.NoError(t, err)
	assert.Equal(t, KindStats, platform.Kind)

	_, err = svc.Build(context.Background(), "passwords")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
