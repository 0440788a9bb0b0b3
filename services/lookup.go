package services

import (
	"strings"

	"csvtolinear/models"
)

// Lookups はステータスとラベルの名前→IDマップを保持します
// 構築後は読み取り専用です
type Lookups struct {
	Statuses models.NameLookup
	Labels   models.NameLookup
}

// BuildStateLookup はワークフローステータスから小文字名→IDのマップを作成します
// 同じ小文字名が複数ある場合は後のものが優先されます
func BuildStateLookup(states []models.WorkflowState) models.NameLookup {
	lookup := make(models.NameLookup, len(states))
	for _, s := range states {
		lookup[strings.ToLower(s.Name)] = s.ID
	}
	return lookup
}

// BuildLabelLookup はラベルから小文字名→IDのマップを作成します
func BuildLabelLookup(labels []models.Label) models.NameLookup {
	lookup := make(models.NameLookup, len(labels))
	for _, l := range labels {
		lookup[strings.ToLower(l.Name)] = l.ID
	}
	return lookup
}

// BuildLookups は2種類のマップをまとめて作成します
func BuildLookups(states []models.WorkflowState, labels []models.Label) Lookups {
	return Lookups{
		Statuses: BuildStateLookup(states),
		Labels:   BuildLabelLookup(labels),
	}
}
