package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"csvtolinear/config"
	"csvtolinear/models"
	"csvtolinear/utils"
)

// ErrMissingAPIKey はAPIキーが設定されていない場合のエラーです
var ErrMissingAPIKey = errors.New("LINEAR_API_KEY が設定されていません")

// 1ページあたりの取得件数
const pageSize = 100

// LinearClient はLinear GraphQL APIとのやり取りを処理します
type LinearClient struct {
	config   *config.Config
	endpoint string
	client   *http.Client
}

// NewLinearClient は新しいLinearクライアントを作成します
func NewLinearClient(cfg *config.Config) *LinearClient {
	endpoint := cfg.LinearAPIURL
	if endpoint == "" {
		endpoint = config.DefaultLinearAPIURL
	}
	return &LinearClient{
		config:   cfg,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError はGraphQLレスポンスに含まれるエラーです
type GraphQLError struct {
	Message string `json:"message"`
}

// APIError はLinear APIがエラーを返した場合のエラーです
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("Linear APIエラー (status %d)", e.StatusCode)
	}
	return strings.Join(e.Messages, "; ")
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// execute はGraphQLリクエストを送信し、data部分を out にデコードします
func (l *LinearClient) execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	if l.config.LinearAPIKey == "" {
		return ErrMissingAPIKey
	}

	payloadBytes, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("JSONエンコードエラー: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	req.Header.Set("Authorization", l.config.LinearAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンス読み込みエラー: %w", err)
	}

	var gqlResp graphQLResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &gqlResp); err != nil && resp.StatusCode == http.StatusOK {
			return fmt.Errorf("レスポンス解析エラー: %w", err)
		}
	}

	if len(gqlResp.Errors) > 0 || resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		for _, e := range gqlResp.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
		if len(apiErr.Messages) == 0 && len(body) > 0 {
			apiErr.Messages = append(apiErr.Messages, strings.TrimSpace(string(body)))
		}
		return apiErr
	}

	if out == nil || len(gqlResp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("レスポンス解析エラー: %w", err)
	}
	return nil
}

// Viewer はAPIキーの所有者を表します
type Viewer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CheckAuth はLinear認証をチェックします
func (l *LinearClient) CheckAuth(ctx context.Context) (*Viewer, error) {
	const query = `query Viewer { viewer { id name email } }`

	var result struct {
		Viewer *Viewer `json:"viewer"`
	}
	if err := l.execute(ctx, query, nil, &result); err != nil {
		return nil, fmt.Errorf("認証失敗: %w", err)
	}
	if result.Viewer == nil {
		return nil, fmt.Errorf("認証失敗: ユーザー情報が取得できません")
	}
	return result.Viewer, nil
}

// ListTeams はワークスペースのチーム一覧を取得します
func (l *LinearClient) ListTeams(ctx context.Context) ([]models.Team, error) {
	const query = `query Teams($first: Int!, $after: String) {
  teams(first: $first, after: $after) {
    nodes { id key name }
    pageInfo { hasNextPage endCursor }
  }
}`

	var teams []models.Team
	cursor := ""
	for {
		variables := map[string]interface{}{"first": pageSize}
		if cursor != "" {
			variables["after"] = cursor
		}

		var result struct {
			Teams struct {
				Nodes []struct {
					ID   string `json:"id"`
					Key  string `json:"key"`
					Name string `json:"name"`
				} `json:"nodes"`
				PageInfo pageInfo `json:"pageInfo"`
			} `json:"teams"`
		}
		if err := l.execute(ctx, query, variables, &result); err != nil {
			return nil, fmt.Errorf("チーム取得失敗: %w", err)
		}

		for _, n := range result.Teams.Nodes {
			teams = append(teams, models.Team{ID: n.ID, Key: n.Key, Name: n.Name})
		}

		if !result.Teams.PageInfo.HasNextPage || result.Teams.PageInfo.EndCursor == "" {
			break
		}
		cursor = result.Teams.PageInfo.EndCursor
	}

	utils.LogDebug("チームを取得しました: %d 件", len(teams))
	return teams, nil
}

// ListTeamStates はチームのワークフローステータス一覧を取得します
func (l *LinearClient) ListTeamStates(ctx context.Context, teamID string) ([]models.WorkflowState, error) {
	const query = `query TeamStates($teamId: String!, $first: Int!, $after: String) {
  team(id: $teamId) {
    states(first: $first, after: $after) {
      nodes { id name type }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

	var states []models.WorkflowState
	cursor := ""
	for {
		variables := map[string]interface{}{"teamId": teamID, "first": pageSize}
		if cursor != "" {
			variables["after"] = cursor
		}

		var result struct {
			Team *struct {
				States struct {
					Nodes    []models.WorkflowState `json:"nodes"`
					PageInfo pageInfo               `json:"pageInfo"`
				} `json:"states"`
			} `json:"team"`
		}
		if err := l.execute(ctx, query, variables, &result); err != nil {
			return nil, fmt.Errorf("ステータス取得失敗: %w", err)
		}
		if result.Team == nil {
			return nil, fmt.Errorf("チーム %s が見つかりません", teamID)
		}

		states = append(states, result.Team.States.Nodes...)

		if !result.Team.States.PageInfo.HasNextPage || result.Team.States.PageInfo.EndCursor == "" {
			break
		}
		cursor = result.Team.States.PageInfo.EndCursor
	}

	utils.LogDebug("ワークフローステータスを取得しました: %d 件", len(states))
	return states, nil
}

// ListLabels はワークスペース全体のラベル一覧を取得します
func (l *LinearClient) ListLabels(ctx context.Context) ([]models.Label, error) {
	const query = `query Labels($first: Int!, $after: String) {
  issueLabels(first: $first, after: $after) {
    nodes { id name }
    pageInfo { hasNextPage endCursor }
  }
}`

	var labels []models.Label
	cursor := ""
	for {
		variables := map[string]interface{}{"first": pageSize}
		if cursor != "" {
			variables["after"] = cursor
		}

		var result struct {
			IssueLabels struct {
				Nodes    []models.Label `json:"nodes"`
				PageInfo pageInfo       `json:"pageInfo"`
			} `json:"issueLabels"`
		}
		if err := l.execute(ctx, query, variables, &result); err != nil {
			return nil, fmt.Errorf("ラベル取得失敗: %w", err)
		}

		labels = append(labels, result.IssueLabels.Nodes...)

		if !result.IssueLabels.PageInfo.HasNextPage || result.IssueLabels.PageInfo.EndCursor == "" {
			break
		}
		cursor = result.IssueLabels.PageInfo.EndCursor
	}

	utils.LogDebug("ラベルを取得しました: %d 件", len(labels))
	return labels, nil
}

// CreateIssue はLinearイシューを作成します
// 作成後にURLを読み戻し、取得できなかった場合は URL を nil のまま返します
func (l *LinearClient) CreateIssue(ctx context.Context, req models.IssueRequest) (*models.CreatedIssue, error) {
	const query = `mutation CreateIssue($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue { id identifier }
  }
}`

	var result struct {
		IssueCreate struct {
			Success bool `json:"success"`
			Issue   *struct {
				ID         string `json:"id"`
				Identifier string `json:"identifier"`
			} `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := l.execute(ctx, query, map[string]interface{}{"input": issueCreateInput(req)}, &result); err != nil {
		return nil, err
	}
	if !result.IssueCreate.Success || result.IssueCreate.Issue == nil {
		return nil, fmt.Errorf("イシュー作成失敗: success=false")
	}

	created := &models.CreatedIssue{
		ID:         result.IssueCreate.Issue.ID,
		Identifier: result.IssueCreate.Issue.Identifier,
	}

	url, err := l.GetIssueURL(ctx, created.ID)
	if err != nil {
		utils.LogDebug("イシュー %s のURL取得失敗: %v", created.ID, err)
	} else if url != "" {
		created.URL = &url
	}

	return created, nil
}

// GetIssueURL はイシューの公開URLを取得します
func (l *LinearClient) GetIssueURL(ctx context.Context, issueID string) (string, error) {
	const query = `query IssueURL($id: String!) { issue(id: $id) { id url } }`

	var result struct {
		Issue *struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"issue"`
	}
	if err := l.execute(ctx, query, map[string]interface{}{"id": issueID}, &result); err != nil {
		return "", err
	}
	if result.Issue == nil {
		return "", fmt.Errorf("イシュー %s が見つかりません", issueID)
	}
	return result.Issue.URL, nil
}

// issueCreateInput はIssueCreateInputを組み立てます
// 未指定のフィールドは送信しません
func issueCreateInput(req models.IssueRequest) map[string]interface{} {
	input := map[string]interface{}{
		"teamId":      req.TeamID,
		"title":       req.Title,
		"description": req.Description,
		"priority":    req.Priority,
	}
	if req.Estimate != nil {
		input["estimate"] = *req.Estimate
	}
	if req.StateID != nil {
		input["stateId"] = *req.StateID
	}
	if req.LabelIDs != nil {
		input["labelIds"] = req.LabelIDs
	}
	return input
}
