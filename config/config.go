package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultLinearAPIURL はLinear GraphQL APIのエンドポイントです
const DefaultLinearAPIURL = "https://api.linear.app/graphql"

const (
	defaultHTTPTimeout = 30 * time.Second
	minHTTPTimeout     = time.Second
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Linear API設定
	LinearAPIKey string
	LinearAPIURL string
	HTTPTimeout  time.Duration

	// 事前に選択するチーム（ID、キー、名前、"[KEY] 名前" のいずれか）
	LinearTeam string

	// ファイルパス
	ImportCSV string
	CSVDir    string
	ReportCSV string

	// 並列処理設定（1 の場合は逐次処理）
	MaxConcurrent int

	LogLevel string
}

// LoadConfig は環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LINEAR_API_URL", DefaultLinearAPIURL)
	v.SetDefault("CSV_DIR", ".")
	v.SetDefault("MAX_CONCURRENT", 1)
	v.SetDefault("HTTP_TIMEOUT", defaultHTTPTimeout.String())
	v.SetDefault("LOG_LEVEL", "info")

	config := &Config{
		LinearAPIKey:  strings.TrimSpace(v.GetString("LINEAR_API_KEY")),
		LinearAPIURL:  strings.TrimRight(v.GetString("LINEAR_API_URL"), "/"),
		HTTPTimeout:   parseTimeout(v.GetString("HTTP_TIMEOUT")),
		LinearTeam:    v.GetString("LINEAR_TEAM"),
		ImportCSV:     v.GetString("IMPORT_CSV"),
		CSVDir:        v.GetString("CSV_DIR"),
		ReportCSV:     v.GetString("REPORT_CSV"),
		MaxConcurrent: v.GetInt("MAX_CONCURRENT"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
	}

	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}

	return config, nil
}

// parseTimeout はタイムアウト値を解釈します
// 単位のない数値は秒として扱い、解釈できない値や1秒未満はデフォルト値にします
func parseTimeout(raw string) time.Duration {
	raw = strings.TrimSpace(raw)

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		seconds, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return defaultHTTPTimeout
		}
		timeout = time.Duration(seconds) * time.Second
	}

	if timeout < minHTTPTimeout {
		return defaultHTTPTimeout
	}
	return timeout
}
