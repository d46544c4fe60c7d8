package command

import (
	"context"
	"fmt"
)

// newHelpDefinition closes over the registry so help can enumerate it.
// Help is user-only; the agent gets the same information as tool schemas.
func newHelpDefinition(r *Registry) *Definition {
	return &Definition{
		Name:          "help",
		Description:   "List the commands available for the active data provider",
		VisibleToUser: true,
		Usage:         "/help",
		Handler: func(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
			defs := r.UserCommands(cc.Config.DataProvider)
			rows := make([][]string, 0, len(defs))
			for _, def := range defs {
				usage := def.Usage
				if usage == "" {
					usage = "/" + def.Name
				}
				rows = append(rows, []string{usage, def.Description})
			}
			return OK(map[string]any{
				"title":   "Commands",
				"headers": []string{"Usage", "Description"},
				"rows":    rows,
				"count":   len(defs),
			}, fmt.Sprintf("%d commands available", len(defs))), nil
		},
	}
}
