package services

import (
	"context"
	"errors"
	"fmt"

	"csvtolinear/models"
	"csvtolinear/utils"
)

var (
	// ErrNoTeams はワークスペースにチームがない場合のエラーです
	ErrNoTeams = errors.New("チームが見つかりません")
	// ErrNotInteractive は対話入力が必要なのに端末がない場合のエラーです
	ErrNotInteractive = errors.New("対話入力ができません")
)

// Prompter は対話的な選択を行います
type Prompter interface {
	SelectTeam(teams []models.Team) (string, error)
	SelectFile(files []string) (string, error)
	Confirm(message string) (bool, error)
}

// RunPlan はセットアップで確定した実行内容です
type RunPlan struct {
	TeamSelection string
	CSVDir        string
	Teams         []models.Team
	TeamID        string
	CSVPath       string
}

// SetupStep はセットアップの1手順です
type SetupStep struct {
	Name string
	Run  func(ctx context.Context, plan *RunPlan) error
}

// RunSetup は手順を順番に実行し、最初に失敗した手順で中断します
func RunSetup(ctx context.Context, plan *RunPlan, steps ...SetupStep) error {
	for _, step := range steps {
		utils.LogDebug("セットアップ: %s", step.Name)
		if err := step.Run(ctx, plan); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}

// LoadTeamsStep はチーム一覧を取得します
func LoadTeamsStep(ws Workspace) SetupStep {
	return SetupStep{
		Name: "チーム取得",
		Run: func(ctx context.Context, plan *RunPlan) error {
			teams, err := ws.ListTeams(ctx)
			if err != nil {
				return err
			}
			if len(teams) == 0 {
				return ErrNoTeams
			}
			plan.Teams = teams
			utils.LogInfo("チームを取得しました: %d 件", len(teams))
			return nil
		},
	}
}

// SelectTeamStep はチームを選択し、IDを確定します
// 事前に選択値が指定されていればプロンプトは表示しません
func SelectTeamStep(prompter Prompter) SetupStep {
	return SetupStep{
		Name: "チーム選択",
		Run: func(ctx context.Context, plan *RunPlan) error {
			selection := plan.TeamSelection
			if selection == "" {
				if prompter == nil {
					return fmt.Errorf("%w: --team を指定してください", ErrNotInteractive)
				}
				var err error
				selection, err = prompter.SelectTeam(plan.Teams)
				if err != nil {
					return err
				}
			}

			teamID, err := ResolveTeam(selection, plan.Teams)
			if err != nil {
				return err
			}
			plan.TeamSelection = selection
			plan.TeamID = teamID
			utils.LogInfo("チームを選択: %s", teamID)
			return nil
		},
	}
}

// SelectCSVStep はインポートするCSVファイルを選択します
func SelectCSVStep(prompter Prompter) SetupStep {
	return SetupStep{
		Name: "CSV選択",
		Run: func(ctx context.Context, plan *RunPlan) error {
			if plan.CSVPath != "" {
				return nil
			}

			dir := plan.CSVDir
			if dir == "" {
				dir = "."
			}
			files, err := FindCSVFiles(dir)
			if err != nil {
				return err
			}
			if prompter == nil {
				return fmt.Errorf("%w: --input を指定してください", ErrNotInteractive)
			}

			path, err := prompter.SelectFile(files)
			if err != nil {
				return err
			}
			plan.CSVPath = path
			utils.LogInfo("CSVファイルを選択: %s", path)
			return nil
		},
	}
}
