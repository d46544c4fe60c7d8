package command

import (
	"context"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/session"
)

func handleListDatabases(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.RedshiftClient()
	if err != nil {
		return nil, err
	}
	databases, err := client.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(databases))
	for _, db := range databases {
		rows = append(rows, []string{db})
	}
	res := OK(map[string]any{
		"title":        "Databases",
		"headers":      []string{"Name"},
		"rows":         rows,
		"count":        len(databases),
		"active_value": cc.Session.Database(),
		"key_column":   0,
	}, fmt.Sprintf("Found %d databases", len(databases)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleSelectDatabase(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.RedshiftClient()
	if err != nil {
		return nil, err
	}
	name := stringArg(args, "database")

	databases, err := client.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, db := range databases {
		if db == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("database %q not found in workgroup %s", name, client.Workgroup())
	}

	cc.Session.Apply(func(sel *session.Selection) {
		sel.Database = name
	})
	return OK(map[string]any{"database": name},
		fmt.Sprintf("Active database is now %s", name)), nil
}

func handleListRedshiftSchemas(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.RedshiftClient()
	if err != nil {
		return nil, err
	}
	database := stringArgDefault(args, "database", cc.Session.Database())

	schemas, err := client.ListSchemas(ctx, database)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(schemas))
	for _, s := range schemas {
		rows = append(rows, []string{s})
	}
	res := OK(map[string]any{
		"title":   "Schemas",
		"headers": []string{"Name"},
		"rows":    rows,
		"count":   len(schemas),
	}, fmt.Sprintf("Found %d schemas", len(schemas)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleRedshiftStatus(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.RedshiftClient()
	if err != nil {
		return nil, err
	}

	reachable := "yes"
	databases, err := client.ListDatabases(ctx)
	if err != nil {
		reachable = "no: " + err.Error()
	}

	return OK(map[string]any{
		"title":   "Redshift status",
		"headers": []string{"Field", "Value"},
		"rows": [][]string{
			{"Workgroup", client.Workgroup()},
			{"Database", orUnset(cc.Session.Database())},
			{"Reachable", reachable},
			{"Databases", fmt.Sprintf("%d", len(databases))},
		},
		"workgroup": client.Workgroup(),
		"reachable": err == nil,
	}, fmt.Sprintf("Workgroup %s, %d databases visible", client.Workgroup(), len(databases))), nil
}
