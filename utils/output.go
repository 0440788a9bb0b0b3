package utils

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// PrintSuccess は作成に成功した行を1行で出力します
func PrintSuccess(w io.Writer, row int, title, url string) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		successStyle.Render("✓"),
		mutedStyle.Render(fmt.Sprintf("行 %d:", row)),
		title,
		mutedStyle.Render("→ "+url))
}

// PrintFailure は作成に失敗した行を1行で出力します
func PrintFailure(w io.Writer, row int, title, message string) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		failureStyle.Render("✗"),
		mutedStyle.Render(fmt.Sprintf("行 %d:", row)),
		title,
		failureStyle.Render(message))
}

// PrintSummary は最終的な集計結果を出力します
func PrintSummary(w io.Writer, successCount, failCount int) {
	fmt.Fprintf(w, "\n%s %s, %s\n",
		headerStyle.Render("インポート結果:"),
		successStyle.Render(fmt.Sprintf("成功 %d 件", successCount)),
		failureStyle.Render(fmt.Sprintf("失敗 %d 件", failCount)))
}
