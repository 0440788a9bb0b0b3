package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvtolinear/config"
	"csvtolinear/models"
	"csvtolinear/utils"
)

func newTestService(cfg *config.Config, api LinearAPI) (*ImportService, *bytes.Buffer) {
	if cfg == nil {
		cfg = &config.Config{MaxConcurrent: 1}
	}
	service := NewImportService(cfg, api, NewCSVProcessor(cfg))
	out := &bytes.Buffer{}
	service.SetOutput(out)
	return service, out
}

func requestsFor(titles ...string) []models.IssueRequest {
	requests := make([]models.IssueRequest, 0, len(titles))
	for i, title := range titles {
		requests = append(requests, models.IssueRequest{Row: i + 1, TeamID: "team-1", Title: title})
	}
	return requests
}

func TestImportIssues_CountsSuccessAndFailure(t *testing.T) {
	api := &fakeLinear{failTitles: map[string]string{"Broken": "Argument Validation Error"}}
	service, out := newTestService(nil, api)

	summary := service.ImportIssues(context.Background(), requestsFor("First", "Broken", "Third"))

	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailCount)
	assert.Equal(t, 3, summary.Total())
	require.Len(t, summary.Outcomes, 3)

	assert.True(t, summary.Outcomes[0].Success)
	assert.Equal(t, "https://linear.app/acme/issue/ENG-1", summary.Outcomes[0].URL)
	assert.False(t, summary.Outcomes[1].Success)
	assert.Equal(t, "Argument Validation Error", summary.Outcomes[1].Error)
	assert.True(t, summary.Outcomes[2].Success)

	// 失敗しても後続の行は処理される
	assert.Equal(t, []string{"First", "Third"}, api.createdTitles())

	output := out.String()
	assert.Contains(t, output, "First")
	assert.Contains(t, output, "Argument Validation Error")
	assert.Contains(t, output, "成功 2 件")
	assert.Contains(t, output, "失敗 1 件")
}

func TestImportIssues_FallsBackToIDWithoutURL(t *testing.T) {
	api := &fakeLinear{noURLTitles: map[string]bool{"No URL": true}}
	service, _ := newTestService(nil, api)

	summary := service.ImportIssues(context.Background(), requestsFor("No URL"))

	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].Success)
	assert.Equal(t, "issue-1", summary.Outcomes[0].URL)
}

func TestImportIssues_Empty(t *testing.T) {
	service, out := newTestService(nil, &fakeLinear{})

	summary := service.ImportIssues(context.Background(), nil)

	assert.Equal(t, 0, summary.Total())
	assert.Contains(t, out.String(), "成功 0 件")
}

func TestImportIssues_ConcurrentKeepsRowOrder(t *testing.T) {
	api := &fakeLinear{
		delays: map[string]time.Duration{
			"A": 30 * time.Millisecond,
			"B": 10 * time.Millisecond,
		},
		failTitles: map[string]string{"C": "boom"},
	}
	service, out := newTestService(&config.Config{MaxConcurrent: 4}, api)

	summary := service.ImportIssues(context.Background(), requestsFor("A", "B", "C", "D", "E"))

	assert.Equal(t, 4, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailCount)

	var rows []int
	for _, outcome := range summary.Outcomes {
		rows = append(rows, outcome.Row)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rows)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	for i, title := range []string{"A", "B", "C", "D", "E"} {
		assert.Contains(t, lines[i], " "+title+" ")
	}
}

func TestImportIssues_CountsMatchInputForManyRows(t *testing.T) {
	failures := map[string]string{}
	titles := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		title := "Issue " + string(rune('a'+i%26)) + strings.Repeat("x", i/26)
		if i%7 == 0 {
			failures[title] = "rejected"
		}
		titles = append(titles, title)
	}
	service, _ := newTestService(&config.Config{MaxConcurrent: 8}, &fakeLinear{failTitles: failures})

	summary := service.ImportIssues(context.Background(), requestsFor(titles...))

	assert.Equal(t, len(titles), summary.SuccessCount+summary.FailCount)
	assert.Equal(t, len(failures), summary.FailCount)
}

func TestImportIssues_ProgressCountsCompletedRows(t *testing.T) {
	var logs bytes.Buffer
	utils.SetLogOutput(&logs)
	utils.SetLogLevel("info")
	t.Cleanup(func() { utils.SetLogOutput(os.Stderr) })

	titles := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		titles = append(titles, "Issue")
	}
	service, _ := newTestService(nil, &fakeLinear{})

	service.ImportIssues(context.Background(), requestsFor(titles...))

	assert.Contains(t, logs.String(), "処理中... 100/250 行完了")
	assert.Contains(t, logs.String(), "処理中... 200/250 行完了")
	assert.NotContains(t, logs.String(), "処理中... 101/250")
	assert.Equal(t, 2, strings.Count(logs.String(), "処理中..."))
}

func writeTestCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeTestCSV(t, dir, "issues.csv",
		"Title,Description,Priority,Estimate,Status,Labels\n"+
			"Fix login bug,Users cannot log in,1,3,Todo,\"Bug, urgent\"\n"+
			",,,,Unknown,\n")
	reportPath := filepath.Join(dir, "report.csv")

	api := &fakeLinear{
		states: []models.WorkflowState{{ID: "S1", Name: "Todo"}},
		labels: []models.Label{{ID: "L1", Name: "Bug"}},
	}
	service, _ := newTestService(nil, api)

	confirmed := ""
	summary, err := service.Run(context.Background(), &RunPlan{TeamID: "team-1", CSVPath: csvPath}, RunOptions{
		ReportCSV: reportPath,
		Confirm: func(message string) (bool, error) {
			confirmed = message
			return true, nil
		},
	})
	require.NoError(t, err)

	assert.Contains(t, confirmed, "2 件")
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailCount)

	require.Len(t, api.created, 2)
	first := api.created[0]
	assert.Equal(t, "Fix login bug", first.Title)
	assert.Equal(t, "Users cannot log in", first.Description)
	assert.Equal(t, 1, first.Priority)
	require.NotNil(t, first.Estimate)
	assert.Equal(t, 3, *first.Estimate)
	require.NotNil(t, first.StateID)
	assert.Equal(t, "S1", *first.StateID)
	assert.Equal(t, []string{"L1"}, first.LabelIDs)

	second := api.created[1]
	assert.Equal(t, "Untitled Issue", second.Title)
	assert.Nil(t, second.StateID)
	assert.Nil(t, second.LabelIDs)

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Row,Title,Result,URL,Error")
	assert.Contains(t, string(report), "1,Fix login bug,CREATED,https://linear.app/acme/issue/ENG-1,")
}

func TestRun_DryRunCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeTestCSV(t, dir, "issues.csv", "Title,Status\nFirst,Todo\n")

	api := &fakeLinear{states: []models.WorkflowState{{ID: "S1", Name: "Todo"}}}
	service, out := newTestService(nil, api)

	summary, err := service.Run(context.Background(), &RunPlan{TeamID: "team-1", CSVPath: csvPath}, RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Total())
	assert.Empty(t, api.created)
	assert.Contains(t, out.String(), "First")
	assert.Contains(t, out.String(), "state=S1")
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeTestCSV(t, dir, "issues.csv", "Title\nFirst\n")

	api := &fakeLinear{}
	service, _ := newTestService(nil, api)

	_, err := service.Run(context.Background(), &RunPlan{TeamID: "team-1", CSVPath: csvPath}, RunOptions{
		Confirm: func(string) (bool, error) { return false, nil },
	})
	require.ErrorIs(t, err, ErrImportCancelled)
	assert.Empty(t, api.created)
}

func TestRun_LookupFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeTestCSV(t, dir, "issues.csv", "Title\nFirst\n")

	api := &fakeLinear{statesErr: assert.AnError}
	service, _ := newTestService(nil, api)

	_, err := service.Run(context.Background(), &RunPlan{TeamID: "team-1", CSVPath: csvPath}, RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, api.created)
}
