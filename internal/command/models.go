package command

import (
	"context"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/session"
)

func handleListModels(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	active := cc.Session.Model()
	if active == "" {
		active = cc.Config.Model
	}

	var rows [][]string
	for _, m := range cc.Config.AvailableModels() {
		rows = append(rows, []string{m, cc.Config.LLMProvider})
	}

	// When a workspace is connected its serving endpoints are listed too,
	// so the user can see what the platform itself hosts.
	if cc.Databricks != nil {
		endpoints, err := cc.Databricks.ListServingEndpoints(ctx)
		if err == nil {
			for _, ep := range endpoints {
				rows = append(rows, []string{ep.Name, "serving-endpoint"})
			}
		}
	}

	res := OK(map[string]any{
		"title":        "Models",
		"headers":      []string{"Model", "Source"},
		"rows":         rows,
		"count":        len(rows),
		"active_value": active,
		"key_column":   0,
	}, fmt.Sprintf("%d models available (current: %s)", len(rows), active))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleSelectModel(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	name := stringArg(args, "model")
	if !cc.Config.ValidateModel(name) {
		return nil, fmt.Errorf("model %q is not available for provider %s (available: %s)",
			name, cc.Config.LLMProvider, cc.Config.AvailableModelsString())
	}

	cc.Session.Apply(func(sel *session.Selection) {
		sel.Model = name
	})
	cc.Config.Model = name
	return OK(map[string]any{"model": name},
		fmt.Sprintf("Active model is now %s", name)), nil
}
