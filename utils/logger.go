package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// logger はパッケージ全体で共有するロガーです
var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}

// SetLogOutput はログの出力先を変更します（テスト用）
func SetLogOutput(w io.Writer) {
	level := logger.GetLevel()
	logger = newLogger(w).Level(level)
}

// SetLogLevel はログレベルを設定します（debug, info, warn, error）
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger = logger.Level(lvl)
}

// LogDebug はデバッグレベルのメッセージをログに記録します
func LogDebug(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

// LogInfo は情報レベルのメッセージをログに記録します
func LogInfo(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

// LogWarn は警告レベルのメッセージをログに記録します
func LogWarn(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

// LogError はエラーレベルのメッセージをログに記録します
func LogError(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}

// TrackTime は関数の実行時間を計測して出力するユーティリティです
func TrackTime(start time.Time, name string) {
	elapsed := time.Since(start)
	logger.Info().Dur("elapsed", elapsed).Msgf("%s 完了時間: %s", name, elapsed)
}
