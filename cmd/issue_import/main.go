package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"csvtolinear/api"
	"csvtolinear/config"
	"csvtolinear/prompt"
	"csvtolinear/services"
	"csvtolinear/utils"
)

var (
	teamFlag       string
	inputFlag      string
	dirFlag        string
	reportFlag     string
	concurrentFlag int
	dryRunFlag     bool
	yesFlag        bool

	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "issue_import",
	Short: "CSVファイルからLinearにイシューをインポートします",
	Long: `CSVファイルからLinearにイシューをインポートします。

CSVの列:
  Title        イシューのタイトル（空の場合は "Untitled Issue"）
  Description  説明
  Priority     優先度（整数、解釈できない場合は 0）
  Estimate     見積もり（整数）
  Status       ワークフローステータス名（大文字小文字は区別しません）
  Labels       カンマ区切りのラベル名

環境変数:
  LINEAR_API_KEY   Linear APIキー (必須)
  LINEAR_TEAM      インポート先のチーム（ID、キー、名前、"[KEY] 名前"）
  IMPORT_CSV       インポートするCSVファイル
  CSV_DIR          CSVファイルを探すフォルダ (デフォルト: .)
  REPORT_CSV       結果を書き出すCSVファイル
  MAX_CONCURRENT   並列処理の最大数 (デフォルト: 1)`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&teamFlag, "team", "", "インポート先のチーム（指定しない場合は選択）")
	rootCmd.Flags().StringVar(&inputFlag, "input", "", "インポートするCSVファイル（指定しない場合は選択）")
	rootCmd.Flags().StringVar(&dirFlag, "dir", "", "CSVファイルを探すフォルダ")
	rootCmd.Flags().StringVar(&reportFlag, "report", "", "結果を書き出すCSVファイル")
	rootCmd.Flags().IntVar(&concurrentFlag, "concurrent", 0, "並列処理の最大数（0の場合は設定ファイルの値を使用）")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "イシューを作成せずに変換結果を表示する")
	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "確認せずに実行する")
}

func run(ctx context.Context) int {
	// 開始時間の記録
	startTime := time.Now()

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		return 1
	}
	utils.SetLogLevel(cfg.LogLevel)

	utils.LogInfo("CSV → Linear イシューインポートツール")

	// コマンドラインで指定された場合、設定を上書き
	if teamFlag != "" {
		cfg.LinearTeam = teamFlag
	}
	if inputFlag != "" {
		cfg.ImportCSV = inputFlag
	}
	if dirFlag != "" {
		cfg.CSVDir = dirFlag
	}
	if reportFlag != "" {
		cfg.ReportCSV = reportFlag
	}
	if concurrentFlag > 0 {
		cfg.MaxConcurrent = concurrentFlag
		utils.LogInfo("並列処理数を指定: %d", cfg.MaxConcurrent)
	}

	// Linear認証情報の確認
	utils.LogInfo("Linear認証情報を確認しています...")
	client := api.NewLinearClient(cfg)
	viewer, err := client.CheckAuth(ctx)
	if err != nil {
		utils.LogError("Linear認証エラー: %v", err)
		utils.LogError("LINEAR_API_KEY を確認してください。")
		return 1
	}
	utils.LogInfo("Linear認証成功: %s", viewer.Name)

	// 端末でない場合は --team と --input が必須
	var prompter services.Prompter
	if prompt.IsInteractive() {
		prompter = prompt.New()
	}

	plan := &services.RunPlan{
		TeamSelection: cfg.LinearTeam,
		CSVDir:        cfg.CSVDir,
		CSVPath:       cfg.ImportCSV,
	}
	err = services.RunSetup(ctx, plan,
		services.LoadTeamsStep(client),
		services.SelectTeamStep(prompter),
		services.SelectCSVStep(prompter),
	)
	if err != nil {
		utils.LogError("セットアップに失敗しました: %v", err)
		return 1
	}

	opts := services.RunOptions{
		DryRun:    dryRunFlag,
		ReportCSV: cfg.ReportCSV,
	}
	if !yesFlag && prompter != nil {
		opts.Confirm = prompter.Confirm
	}

	importService := services.NewImportService(cfg, client, services.NewCSVProcessor(cfg))
	summary, err := importService.Run(ctx, plan, opts)
	if err != nil {
		if errors.Is(err, services.ErrImportCancelled) || errors.Is(err, prompt.ErrAborted) {
			utils.LogWarn("%v", err)
			return 0
		}
		utils.LogError("イシューインポートエラー: %v", err)
		return 1
	}

	// 処理時間の表示
	elapsed := time.Since(startTime)
	utils.LogInfo("処理が完了しました: 成功=%d, 失敗=%d, 処理時間: %s", summary.SuccessCount, summary.FailCount, elapsed)
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}
