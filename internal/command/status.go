package command

import (
	"context"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/constants"
)

func handleStatus(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	sel := cc.Session.Snapshot()
	model := sel.Model
	if model == "" {
		model = cc.Config.Model
	}

	rows := [][]string{
		{"LLM provider", cc.Config.LLMProvider},
		{"Model", model},
		{"Data provider", cc.Config.DataProvider},
	}
	switch cc.Config.DataProvider {
	case constants.ProviderDatabricks:
		rows = append(rows,
			[]string{"Workspace", orUnset(cc.Config.WorkspaceURL)},
			[]string{"Catalog", orUnset(sel.Catalog)},
			[]string{"Schema", orUnset(sel.Schema)},
			[]string{"Warehouse", orUnset(sel.Warehouse)},
		)
	case constants.ProviderRedshift:
		rows = append(rows,
			[]string{"Workgroup", orUnset(cc.Config.RedshiftWorkgroup)},
			[]string{"Database", orUnset(sel.Database)},
		)
	}

	return OK(map[string]any{
		"title":         "Session status",
		"headers":       []string{"Setting", "Value"},
		"rows":          rows,
		"llm_provider":  cc.Config.LLMProvider,
		"data_provider": cc.Config.DataProvider,
		"model":         model,
		"catalog":       sel.Catalog,
		"schema":        sel.Schema,
		"warehouse":     sel.Warehouse,
		"database":      sel.Database,
	}, fmt.Sprintf("Using %s via %s on %s", model, cc.Config.LLMProvider, cc.Config.DataProvider)), nil
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
