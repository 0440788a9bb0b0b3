// Package prompt は端末での対話的な選択を提供します
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"csvtolinear/models"
)

// ErrAborted はユーザーが入力を中断した場合のエラーです
var ErrAborted = errors.New("入力が中断されました")

// IsInteractive は標準入力と標準出力が端末かどうかを返します
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalPrompter はhuhフォームで選択を行います
type TerminalPrompter struct {
	theme *huh.Theme
}

// New は新しいTerminalPrompterを作成します
func New() *TerminalPrompter {
	return &TerminalPrompter{theme: huh.ThemeCharm()}
}

// TeamOptions はチーム選択の選択肢を作ります（表示: "[KEY] 名前", 値: ID）
func TeamOptions(teams []models.Team) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(teams))
	for _, team := range teams {
		options = append(options, huh.NewOption(team.DisplayName(), team.ID))
	}
	return options
}

// FileOptions はCSVファイル選択の選択肢を作ります
func FileOptions(files []string) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(files))
	for _, file := range files {
		options = append(options, huh.NewOption(filepath.Base(file), file))
	}
	return options
}

// SelectTeam はインポート先のチームを選択します
func (p *TerminalPrompter) SelectTeam(teams []models.Team) (string, error) {
	var selected string
	err := p.run(huh.NewSelect[string]().
		Title("インポート先のチーム").
		Options(TeamOptions(teams)...).
		Value(&selected))
	return selected, err
}

// SelectFile はインポートするCSVファイルを選択します
func (p *TerminalPrompter) SelectFile(files []string) (string, error) {
	var selected string
	err := p.run(huh.NewSelect[string]().
		Title("インポートするCSVファイル").
		Options(FileOptions(files)...).
		Value(&selected))
	return selected, err
}

// Confirm は確認を求めます
func (p *TerminalPrompter) Confirm(message string) (bool, error) {
	confirmed := false
	err := p.run(huh.NewConfirm().
		Title(message).
		Affirmative("はい").
		Negative("いいえ").
		Value(&confirmed))
	return confirmed, err
}

func (p *TerminalPrompter) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithTheme(p.theme)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("フォームエラー: %w", err)
	}
	return nil
}
