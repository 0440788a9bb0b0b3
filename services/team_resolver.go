package services

import (
	"fmt"
	"regexp"

	"csvtolinear/models"
)

// チームIDの形式 (8-4-4-4-12 の16進数)
var teamIDPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// UnresolvedTeamError は選択されたチームが見つからない場合のエラーです
type UnresolvedTeamError struct {
	Selection string
}

func (e *UnresolvedTeamError) Error() string {
	return fmt.Sprintf("チーム '%s' が見つかりません", e.Selection)
}

// ResolveTeam は選択値からチームIDを決定します
//
// ID形式の文字列はチーム一覧を検索せずにそのまま返します。
// それ以外は名前、キー、"[KEY] 名前" のいずれかと完全一致する最初のチームを返します。
func ResolveTeam(selection string, teams []models.Team) (string, error) {
	if teamIDPattern.MatchString(selection) {
		return selection, nil
	}

	for _, team := range teams {
		if team.Name == selection || team.Key == selection || team.DisplayName() == selection {
			return team.ID, nil
		}
	}

	return "", &UnresolvedTeamError{Selection: selection}
}
