package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"csvtolinear/models"
)

// fakeLinear はテスト用のLinear APIです
type fakeLinear struct {
	mu sync.Mutex

	teams  []models.Team
	states []models.WorkflowState
	labels []models.Label

	teamsErr  error
	statesErr error

	// タイトルごとの作成エラー
	failTitles map[string]string
	// URLを返さないタイトル
	noURLTitles map[string]bool
	// タイトルごとの遅延
	delays map[string]time.Duration

	created []models.IssueRequest
}

func (f *fakeLinear) ListTeams(ctx context.Context) ([]models.Team, error) {
	return f.teams, f.teamsErr
}

func (f *fakeLinear) ListTeamStates(ctx context.Context, teamID string) ([]models.WorkflowState, error) {
	return f.states, f.statesErr
}

func (f *fakeLinear) ListLabels(ctx context.Context) ([]models.Label, error) {
	return f.labels, nil
}

func (f *fakeLinear) CreateIssue(ctx context.Context, req models.IssueRequest) (*models.CreatedIssue, error) {
	if d := f.delays[req.Title]; d > 0 {
		time.Sleep(d)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if msg, ok := f.failTitles[req.Title]; ok {
		return nil, errors.New(msg)
	}

	f.created = append(f.created, req)
	id := fmt.Sprintf("issue-%d", len(f.created))
	created := &models.CreatedIssue{ID: id, Identifier: fmt.Sprintf("ENG-%d", len(f.created))}
	if !f.noURLTitles[req.Title] {
		url := "https://linear.app/acme/issue/" + created.Identifier
		created.URL = &url
	}
	return created, nil
}

func (f *fakeLinear) createdTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	titles := make([]string, 0, len(f.created))
	for _, req := range f.created {
		titles = append(titles, req.Title)
	}
	return titles
}

// fakePrompter はテスト用のPrompterです
type fakePrompter struct {
	team    string
	file    string
	confirm bool
	err     error

	teamCalls int
	fileCalls int
	offered   []string
}

func (p *fakePrompter) SelectTeam(teams []models.Team) (string, error) {
	p.teamCalls++
	return p.team, p.err
}

func (p *fakePrompter) SelectFile(files []string) (string, error) {
	p.fileCalls++
	p.offered = files
	return p.file, p.err
}

func (p *fakePrompter) Confirm(message string) (bool, error) {
	return p.confirm, p.err
}
