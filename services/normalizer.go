package services

import (
	"fmt"
	"strconv"
	"strings"

	"csvtolinear/models"
)

// DefaultTitle はタイトルが空の行に使うタイトルです
const DefaultTitle = "Untitled Issue"

// CSVの列名
const (
	ColumnTitle       = "Title"
	ColumnDescription = "Description"
	ColumnPriority    = "Priority"
	ColumnEstimate    = "Estimate"
	ColumnStatus      = "Status"
	ColumnLabels      = "Labels"
)

// NormalizeRow はCSVの1行をイシュー作成リクエストに変換します
//
// 不正な値はエラーにせず、既定値または未指定に置き換えます。
// 置き換えた内容は notes として返します。
func NormalizeRow(row models.CSVRecord, lookups Lookups, teamID string) (models.IssueRequest, []string) {
	var notes []string

	req := models.IssueRequest{
		TeamID:      teamID,
		Title:       DefaultTitle,
		Description: row[ColumnDescription],
	}

	if title := row[ColumnTitle]; title != "" {
		req.Title = title
	}

	if raw := strings.TrimSpace(row[ColumnPriority]); raw != "" {
		priority, err := strconv.Atoi(raw)
		if err != nil {
			notes = append(notes, fmt.Sprintf("Priority '%s' を数値に変換できないため 0 にします", raw))
		} else {
			req.Priority = priority
		}
	}

	if raw := strings.TrimSpace(row[ColumnEstimate]); raw != "" {
		estimate, err := strconv.Atoi(raw)
		if err != nil {
			notes = append(notes, fmt.Sprintf("Estimate '%s' を数値に変換できないため未指定にします", raw))
		} else {
			req.Estimate = &estimate
		}
	}

	if status := row[ColumnStatus]; status != "" {
		if stateID, ok := lookups.Statuses[strings.ToLower(strings.TrimSpace(status))]; ok {
			req.StateID = &stateID
		} else {
			notes = append(notes, fmt.Sprintf("ステータス '%s' が見つかりません", status))
		}
	}

	if labels := row[ColumnLabels]; labels != "" {
		var labelIDs []string
		for _, name := range strings.Split(labels, ",") {
			key := strings.ToLower(strings.TrimSpace(name))
			if labelID, ok := lookups.Labels[key]; ok {
				labelIDs = append(labelIDs, labelID)
			} else if key != "" {
				notes = append(notes, fmt.Sprintf("ラベル '%s' が見つかりません", strings.TrimSpace(name)))
			}
		}
		// 解決できたラベルがない場合はフィールド自体を送らない
		if len(labelIDs) > 0 {
			req.LabelIDs = labelIDs
		}
	}

	return req, notes
}

// NormalizeRecords はすべての行を変換します
// 行番号はヘッダーを除いたデータ行の番号（1始まり）です
func NormalizeRecords(records []models.CSVRecord, lookups Lookups, teamID string, logf func(string, ...interface{})) []models.IssueRequest {
	requests := make([]models.IssueRequest, 0, len(records))
	for i, record := range records {
		req, notes := NormalizeRow(record, lookups, teamID)
		req.Row = i + 1
		if logf != nil {
			for _, note := range notes {
				logf("行 %d: %s", req.Row, note)
			}
		}
		requests = append(requests, req)
	}
	return requests
}
