package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"csvtolinear/api"
	"csvtolinear/config"
	"csvtolinear/utils"
)

var rootCmd = &cobra.Command{
	Use:   "auth_check",
	Short: "Linear APIの認証情報を確認します",
	Long: `Linear認証確認ツール

環境変数:
  LINEAR_API_KEY      Linear APIキー (必須)
  LINEAR_API_URL      Linear GraphQLエンドポイント (デフォルト: https://api.linear.app/graphql)

説明:
  このツールはLinear APIの認証情報が正しく設定されているかを確認し、
  インポート先として選択できるチームを一覧表示します。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkAuth(cmd.Context())
	},
}

func checkAuth(ctx context.Context) error {
	utils.LogInfo("Linear認証確認ツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	utils.SetLogLevel(cfg.LogLevel)

	client := api.NewLinearClient(cfg)

	// 認証チェック
	utils.LogInfo("Linear APIの認証を確認しています...")
	viewer, err := client.CheckAuth(ctx)
	if err != nil {
		return err
	}
	utils.LogInfo("Linear認証成功！ ユーザー: %s <%s> 接続先: %s", viewer.Name, viewer.Email, cfg.LinearAPIURL)

	teams, err := client.ListTeams(ctx)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		utils.LogWarn("チームが見つかりません。インポートにはチームが必要です。")
		return nil
	}
	for _, team := range teams {
		fmt.Printf("%s\t%s\n", team.ID, team.DisplayName())
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		utils.LogError("Linear認証エラー: %v", err)
		utils.LogError("認証情報を確認してください。")
		os.Exit(1)
	}
}
