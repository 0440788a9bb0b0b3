package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"csvtolinear/config"
	"csvtolinear/models"
	"csvtolinear/utils"
)

// IssueCreator はイシューを作成するAPIです
type IssueCreator interface {
	CreateIssue(ctx context.Context, req models.IssueRequest) (*models.CreatedIssue, error)
}

// Workspace はチーム、ステータス、ラベルを取得するAPIです
type Workspace interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListTeamStates(ctx context.Context, teamID string) ([]models.WorkflowState, error)
	ListLabels(ctx context.Context) ([]models.Label, error)
}

// LinearAPI はインポートに必要なLinear APIの操作です
type LinearAPI interface {
	Workspace
	IssueCreator
}

// ImportService はCSVからLinearへのイシューインポートを処理します
type ImportService struct {
	config  *config.Config
	api     LinearAPI
	csvProc *CSVProcessor
	out     io.Writer
}

// NewImportService は新しいインポートサービスを作成します
func NewImportService(cfg *config.Config, api LinearAPI, csvProc *CSVProcessor) *ImportService {
	return &ImportService{
		config:  cfg,
		api:     api,
		csvProc: csvProc,
		out:     os.Stdout,
	}
}

// SetOutput は行ごとの結果の出力先を変更します
func (m *ImportService) SetOutput(w io.Writer) {
	m.out = w
}

// FetchLookups はチームのステータスとワークスペースのラベルからマップを作成します
func (m *ImportService) FetchLookups(ctx context.Context, teamID string) (Lookups, error) {
	states, err := m.api.ListTeamStates(ctx, teamID)
	if err != nil {
		return Lookups{}, fmt.Errorf("ステータス取得エラー: %w", err)
	}

	labels, err := m.api.ListLabels(ctx)
	if err != nil {
		return Lookups{}, fmt.Errorf("ラベル取得エラー: %w", err)
	}

	utils.LogInfo("ステータス %d 件、ラベル %d 件を取得しました", len(states), len(labels))
	return BuildLookups(states, labels), nil
}

// PrepareRequests はCSVを読み込み、イシュー作成リクエストに変換します
func (m *ImportService) PrepareRequests(ctx context.Context, csvPath, teamID string) ([]models.IssueRequest, error) {
	records, err := m.csvProc.ReadCSV(csvPath)
	if err != nil {
		return nil, err
	}

	lookups, err := m.FetchLookups(ctx, teamID)
	if err != nil {
		return nil, err
	}

	return NormalizeRecords(records, lookups, teamID, utils.LogWarn), nil
}

// ImportIssues はリクエストを行の順にLinearへ作成します
//
// 1行の失敗で処理は中断しません。MaxConcurrent が2以上の場合は並列に作成しますが、
// 結果の出力と集計は常に入力の行順で行います。
func (m *ImportService) ImportIssues(ctx context.Context, requests []models.IssueRequest) models.ImportSummary {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "イシューインポート")

	limit := 1
	if m.config != nil && m.config.MaxConcurrent > 1 {
		limit = m.config.MaxConcurrent
	}

	utils.LogInfo("イシューのインポートを開始します: %d 件 (並列数: %d)", len(requests), limit)

	// 行ごとの結果チャネル
	results := make([]chan models.ImportOutcome, len(requests))
	for i := range results {
		results[i] = make(chan models.ImportOutcome, 1)
	}

	go func() {
		var g errgroup.Group
		g.SetLimit(limit)
		for i := range requests {
			g.Go(func() error {
				results[i] <- m.processRequest(ctx, requests[i])
				return nil
			})
		}
		_ = g.Wait()
	}()

	summary := models.ImportSummary{Outcomes: make([]models.ImportOutcome, 0, len(requests))}
	for i := range requests {
		outcome := <-results[i]
		if outcome.Success {
			summary.SuccessCount++
			utils.PrintSuccess(m.out, outcome.Row, outcome.Title, outcome.URL)
		} else {
			summary.FailCount++
			utils.PrintFailure(m.out, outcome.Row, outcome.Title, outcome.Error)
		}
		summary.Outcomes = append(summary.Outcomes, outcome)

		// 進捗を表示（大量データの場合）
		if done := i + 1; done%100 == 0 {
			utils.LogInfo("処理中... %d/%d 行完了", done, len(requests))
		}
	}

	utils.PrintSummary(m.out, summary.SuccessCount, summary.FailCount)
	utils.LogInfo("イシューのインポートが完了しました: 成功=%d, 失敗=%d", summary.SuccessCount, summary.FailCount)
	return summary
}

// processRequest は1件のリクエストからイシューを作成します
func (m *ImportService) processRequest(ctx context.Context, req models.IssueRequest) models.ImportOutcome {
	outcome := models.ImportOutcome{Row: req.Row, Title: req.Title}

	created, err := m.api.CreateIssue(ctx, req)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if created == nil {
		outcome.Error = "イシュー作成結果が空です"
		return outcome
	}

	outcome.Success = true
	if created.URL != nil && *created.URL != "" {
		outcome.URL = *created.URL
	} else {
		// URLが取得できない場合はIDで報告する
		outcome.URL = created.ID
	}
	return outcome
}

// Preview は作成せずに変換結果を出力します
func (m *ImportService) Preview(requests []models.IssueRequest) {
	for _, req := range requests {
		state := "-"
		if req.StateID != nil {
			state = *req.StateID
		}
		estimate := "-"
		if req.Estimate != nil {
			estimate = fmt.Sprintf("%d", *req.Estimate)
		}
		fmt.Fprintf(m.out, "行 %d: %s (priority=%d, estimate=%s, state=%s, labels=%v)\n",
			req.Row, req.Title, req.Priority, estimate, state, req.LabelIDs)
	}
}

// ErrImportCancelled は確認で中止された場合のエラーです
var ErrImportCancelled = errors.New("インポートを中止しました")

// RunOptions はインポート実行時のオプションです
type RunOptions struct {
	DryRun    bool
	ReportCSV string
	// Confirm が nil の場合は確認せずに実行します
	Confirm func(message string) (bool, error)
}

// Run はセットアップ済みの計画に従ってインポート全体を実行します
func (m *ImportService) Run(ctx context.Context, plan *RunPlan, opts RunOptions) (models.ImportSummary, error) {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "インポート処理全体")

	requests, err := m.PrepareRequests(ctx, plan.CSVPath, plan.TeamID)
	if err != nil {
		return models.ImportSummary{}, err
	}

	if opts.DryRun {
		utils.LogInfo("ドライラン: %d 件のイシューは作成しません", len(requests))
		m.Preview(requests)
		return models.ImportSummary{}, nil
	}

	if opts.Confirm != nil {
		ok, err := opts.Confirm(fmt.Sprintf("%d 件のイシューを作成しますか？", len(requests)))
		if err != nil {
			return models.ImportSummary{}, err
		}
		if !ok {
			return models.ImportSummary{}, ErrImportCancelled
		}
	}

	summary := m.ImportIssues(ctx, requests)

	if opts.ReportCSV != "" {
		if err := m.csvProc.WriteReportCSV(opts.ReportCSV, summary); err != nil {
			// 結果の書き出し失敗はインポート自体の失敗にしない
			utils.LogError("結果CSV書き込みエラー: %v", err)
		}
	}

	return summary, nil
}
