package models

import "fmt"

// CSVRecord はCSVの1行を表します (ヘッダー名→値のマップ)
type CSVRecord map[string]string

// NameLookup は小文字化した名前からLinearの内部IDへのマッピングです
type NameLookup map[string]string

// Team はLinearのチームを表します
type Team struct {
	ID   string
	Key  string
	Name string
}

// DisplayName は "[KEY] 名前" 形式の表示文字列を返します
func (t Team) DisplayName() string {
	return fmt.Sprintf("[%s] %s", t.Key, t.Name)
}

// WorkflowState はチームのワークフローステータスを表します
type WorkflowState struct {
	ID   string
	Name string
	Type string
}

// Label はワークスペースのラベルを表します
type Label struct {
	ID   string
	Name string
}

// IssueRequest はCSVの1行から作られるイシュー作成リクエストです
// Estimate と StateID は nil の場合「未指定」、LabelIDs は nil の場合フィールド自体を送信しません
type IssueRequest struct {
	Row         int
	TeamID      string
	Title       string
	Description string
	Priority    int
	Estimate    *int
	StateID     *string
	LabelIDs    []string
}

// CreatedIssue は作成されたイシューを表します
// URL は読み戻せなかった場合 nil になります
type CreatedIssue struct {
	ID         string
	Identifier string
	URL        *string
}

// ImportOutcome は1行分のインポート結果です
type ImportOutcome struct {
	Row     int
	Title   string
	Success bool
	URL     string // 成功時: イシューURL（取得できない場合はID）
	Error   string // 失敗時: エラーメッセージ
}

// ImportSummary はインポート全体の集計です
type ImportSummary struct {
	SuccessCount int
	FailCount    int
	Outcomes     []ImportOutcome
}

// Total は処理した行数を返します
func (s ImportSummary) Total() int {
	return s.SuccessCount + s.FailCount
}
