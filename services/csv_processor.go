package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"csvtolinear/config"
	"csvtolinear/models"
	"csvtolinear/utils"
)

// ErrNoCSVFiles はディレクトリにCSVファイルが見つからない場合のエラーです
var ErrNoCSVFiles = errors.New("CSVファイルが見つかりません")

// CSVProcessor はCSVファイルの読み書きを担当します
type CSVProcessor struct {
	config *config.Config
}

// NewCSVProcessor は新しいCSVプロセッサーを作成します
func NewCSVProcessor(cfg *config.Config) *CSVProcessor {
	return &CSVProcessor{
		config: cfg,
	}
}

// ReadCSV はヘッダー行を列名としてCSVを読み込みます
// 列数が足りない行は、存在する列だけを読み込みます
func (p *CSVProcessor) ReadCSV(filePath string) ([]models.CSVRecord, error) {
	utils.LogInfo("CSVファイル '%s' を読み込みます", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("CSVオープンエラー: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV読み込みエラー: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("CSVデータが不足しています")
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	result := make([]models.CSVRecord, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < len(headers) {
			utils.LogDebug("行 %d: フィールド数が不足しています（ヘッダー: %d, 行: %d）", i+1, len(headers), len(record))
		}

		rowData := make(models.CSVRecord)
		for j := 0; j < min(len(headers), len(record)); j++ {
			rowData[headers[j]] = record[j]
		}
		result = append(result, rowData)
	}

	utils.LogInfo("CSVを読み込みました: %d 行", len(result))
	return result, nil
}

// FindCSVFiles はディレクトリ直下の .csv ファイルを名前順で返します
func FindCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("フォルダ読み取りエラー: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCSVFiles, dir)
	}

	sort.Strings(files)
	return files, nil
}

// WriteReportCSV はインポート結果をCSVに書き出します
func (p *CSVProcessor) WriteReportCSV(filePath string, summary models.ImportSummary) error {
	utils.LogInfo("結果CSVファイル '%s' を作成します", filePath)

	headers := []string{"Row", "Title", "Result", "URL", "Error"}
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		result := "FAILED"
		if outcome.Success {
			result = "CREATED"
		}
		rows = append(rows, []string{
			strconv.Itoa(outcome.Row), outcome.Title, result, outcome.URL, outcome.Error,
		})
	}

	if err := writeCSV(filePath, headers, rows); err != nil {
		return err
	}

	utils.LogInfo("CSV書き込み完了: %d 行", len(rows))
	return nil
}

// WritePreviewCSV は変換後のリクエストをCSVに書き出します
func (p *CSVProcessor) WritePreviewCSV(filePath string, requests []models.IssueRequest) error {
	utils.LogInfo("プレビューCSVファイル '%s' を作成します", filePath)

	if len(requests) == 0 {
		return fmt.Errorf("書き込むデータがありません")
	}

	headers := []string{"Row", "Team ID", "Title", "Description", "Priority", "Estimate", "State ID", "Label IDs"}
	rows := make([][]string, 0, len(requests))
	for _, req := range requests {
		estimate := ""
		if req.Estimate != nil {
			estimate = strconv.Itoa(*req.Estimate)
		}
		stateID := ""
		if req.StateID != nil {
			stateID = *req.StateID
		}
		rows = append(rows, []string{
			strconv.Itoa(req.Row), req.TeamID, req.Title, req.Description,
			strconv.Itoa(req.Priority), estimate, stateID, strings.Join(req.LabelIDs, ","),
		})
	}

	if err := writeCSV(filePath, headers, rows); err != nil {
		return err
	}

	utils.LogInfo("CSV書き込み完了: %d 行", len(rows))
	return nil
}

func writeCSV(filePath string, headers []string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("CSVファイル作成エラー: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("ヘッダー書き込みエラー: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("行書き込みエラー: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV書き込み完了エラー: %w", err)
	}
	return nil
}
