package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvtolinear/models"
)

const (
	engTeamID = "3f2b8c1e-5a4d-4e8f-9b7a-1c2d3e4f5a6b"
	opsTeamID = "9a8b7c6d-1e2f-4a3b-8c4d-5e6f7a8b9c0d"
)

// チーム選択プロンプトはチームのIDを返す
var setupTeams = []models.Team{
	{ID: engTeamID, Key: "ENG", Name: "Engineering"},
	{ID: opsTeamID, Key: "OPS", Name: "Operations"},
}

func TestRunSetup_Interactive(t *testing.T) {
	dir := t.TempDir()
	writeTestCSV(t, dir, "issues.csv", "Title\nx\n")

	prompter := &fakePrompter{team: opsTeamID, file: filepath.Join(dir, "issues.csv")}
	plan := &RunPlan{CSVDir: dir}

	err := RunSetup(context.Background(), plan,
		LoadTeamsStep(&fakeLinear{teams: setupTeams}),
		SelectTeamStep(prompter),
		SelectCSVStep(prompter),
	)
	require.NoError(t, err)

	assert.Equal(t, opsTeamID, plan.TeamID)
	assert.Equal(t, opsTeamID, plan.TeamSelection)
	assert.Equal(t, filepath.Join(dir, "issues.csv"), plan.CSVPath)
	assert.Equal(t, []string{filepath.Join(dir, "issues.csv")}, prompter.offered)
	assert.Equal(t, 1, prompter.teamCalls)
}

func TestRunSetup_PreselectedSkipsPrompts(t *testing.T) {
	prompter := &fakePrompter{}
	plan := &RunPlan{TeamSelection: "[ENG] Engineering", CSVPath: "issues.csv"}

	err := RunSetup(context.Background(), plan,
		LoadTeamsStep(&fakeLinear{teams: setupTeams}),
		SelectTeamStep(prompter),
		SelectCSVStep(prompter),
	)
	require.NoError(t, err)

	assert.Equal(t, engTeamID, plan.TeamID)
	assert.Equal(t, "issues.csv", plan.CSVPath)
	assert.Zero(t, prompter.teamCalls)
	assert.Zero(t, prompter.fileCalls)
}

func TestRunSetup_NoTeams(t *testing.T) {
	selectCalled := false
	err := RunSetup(context.Background(), &RunPlan{},
		LoadTeamsStep(&fakeLinear{}),
		SetupStep{Name: "never", Run: func(context.Context, *RunPlan) error {
			selectCalled = true
			return nil
		}},
	)
	require.ErrorIs(t, err, ErrNoTeams)
	assert.False(t, selectCalled)
}

func TestRunSetup_UnresolvedTeam(t *testing.T) {
	err := RunSetup(context.Background(), &RunPlan{TeamSelection: "Marketing"},
		LoadTeamsStep(&fakeLinear{teams: setupTeams}),
		SelectTeamStep(nil),
	)

	var unresolved *UnresolvedTeamError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "Marketing", unresolved.Selection)
}

func TestRunSetup_NonInteractiveRequiresSelections(t *testing.T) {
	err := RunSetup(context.Background(), &RunPlan{},
		LoadTeamsStep(&fakeLinear{teams: setupTeams}),
		SelectTeamStep(nil),
	)
	require.ErrorIs(t, err, ErrNotInteractive)

	dir := t.TempDir()
	writeTestCSV(t, dir, "issues.csv", "Title\nx\n")
	err = RunSetup(context.Background(), &RunPlan{CSVDir: dir}, SelectCSVStep(nil))
	require.ErrorIs(t, err, ErrNotInteractive)
}

func TestRunSetup_NoCSVFiles(t *testing.T) {
	prompter := &fakePrompter{}
	err := RunSetup(context.Background(), &RunPlan{CSVDir: t.TempDir()}, SelectCSVStep(prompter))

	require.ErrorIs(t, err, ErrNoCSVFiles)
	assert.Zero(t, prompter.fileCalls)
}

func TestRunSetup_PromptErrorStops(t *testing.T) {
	prompter := &fakePrompter{err: assert.AnError}
	err := RunSetup(context.Background(), &RunPlan{},
		LoadTeamsStep(&fakeLinear{teams: setupTeams}),
		SelectTeamStep(prompter),
	)
	require.ErrorIs(t, err, assert.AnError)
}
