package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"csvtolinear/api"
	"csvtolinear/config"
	"csvtolinear/services"
	"csvtolinear/utils"
)

var (
	inputFlag  string
	outputFlag string
	teamFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "csv_convert",
	Short: "CSVをLinearのイシュー作成リクエストに変換してプレビューCSVに書き出します",
	Long: `CSV → Linear 変換プレビューツール

説明:
  このツールはCSVの各行を、ステータス名とラベル名をIDに解決した
  イシュー作成リクエストに変換し、CSVとして書き出します。
  イシューは作成しません。インポート前の確認に使用してください。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return convert(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&inputFlag, "input", "", "変換するCSVファイル（指定しない場合は環境変数 IMPORT_CSV）")
	rootCmd.Flags().StringVar(&outputFlag, "output", "linear_import_preview.csv", "変換結果の出力先")
	rootCmd.Flags().StringVar(&teamFlag, "team", "", "インポート先のチーム（指定しない場合は環境変数 LINEAR_TEAM）")
}

func convert(ctx context.Context) error {
	// 開始時間の記録
	startTime := time.Now()

	utils.LogInfo("CSV → Linear 変換プレビューツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	utils.SetLogLevel(cfg.LogLevel)

	// コマンドラインでパスが指定された場合、設定を上書き
	if inputFlag != "" {
		cfg.ImportCSV = inputFlag
	}
	if teamFlag != "" {
		cfg.LinearTeam = teamFlag
	}
	if cfg.ImportCSV == "" {
		return fmt.Errorf("入力ファイルが指定されていません (--input または IMPORT_CSV)")
	}
	if cfg.LinearTeam == "" {
		return fmt.Errorf("チームが指定されていません (--team または LINEAR_TEAM)")
	}

	client := api.NewLinearClient(cfg)
	plan := &services.RunPlan{TeamSelection: cfg.LinearTeam, CSVPath: cfg.ImportCSV}
	if err := services.RunSetup(ctx, plan,
		services.LoadTeamsStep(client),
		services.SelectTeamStep(nil),
	); err != nil {
		return err
	}

	csvProc := services.NewCSVProcessor(cfg)
	importService := services.NewImportService(cfg, client, csvProc)
	requests, err := importService.PrepareRequests(ctx, plan.CSVPath, plan.TeamID)
	if err != nil {
		return err
	}

	if err := csvProc.WritePreviewCSV(outputFlag, requests); err != nil {
		return err
	}

	// 処理時間の表示
	elapsed := time.Since(startTime)
	utils.LogInfo("CSV変換が完了しました: %d 件のレコードを処理しました。処理時間: %s", len(requests), elapsed)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		utils.LogError("CSV変換エラー: %v", err)
		os.Exit(1)
	}
}
