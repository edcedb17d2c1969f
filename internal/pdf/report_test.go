package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/models"
)

func TestTodoReport(t *testing.T) {
	g := NewReportGenerator("")
	deadline := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	err := g.TodoReport(&buf, ReportData{
		Profile:    models.Profile{Name: "Ann", Username: "ann", Email: "ann@example.com"},
		Statistics: models.Statistics{Total: 2, Completed: 1, Efficiency: 50},
		Todos: []models.Todo{
			{Title: "Write the quarterly report for the board of directors please", Priority: 9, Deadline: deadline},
			{Title: "Café", Priority: 2, Deadline: deadline, IsCompleted: true},
		},
		GeneratedAt: deadline,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTodoReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator("").TodoReport(&buf, ReportData{GeneratedAt: time.Now()}))
	assert.NotZero(t, buf.Len())
}

func TestTodoReport_MissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := NewReportGenerator("/nonexistent/font.ttf").TodoReport(&buf, ReportData{GeneratedAt: time.Now()})
	assert.Error(t, err)
}
