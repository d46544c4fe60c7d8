package command

import (
	"context"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/session"
)

func handleListSchemas(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	catalog := stringArgDefault(args, "catalog", cc.Session.Catalog())
	if catalog == "" {
		return Fail("no catalog selected. Use /select-catalog or pass one"), nil
	}
	schemas, err := client.ListSchemas(ctx, catalog)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(schemas))
	for _, s := range schemas {
		rows = append(rows, []string{s.Name, s.Comment})
	}
	res := OK(map[string]any{
		"title":        "Schemas in " + catalog,
		"headers":      []string{"Name", "Comment"},
		"rows":         rows,
		"count":        len(schemas),
		"catalog":      catalog,
		"active_value": cc.Session.Schema(),
		"key_column":   0,
	}, fmt.Sprintf("Found %d schemas in %s", len(schemas), catalog))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleSelectSchema(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	catalog := stringArgDefault(args, "catalog", cc.Session.Catalog())
	if catalog == "" {
		return Fail("no catalog selected. Use /select-catalog or pass one"), nil
	}
	name := stringArg(args, "schema")

	schemas, err := client.ListSchemas(ctx, catalog)
	if err != nil {
		return nil, err
	}
	found := false
	for _, s := range schemas {
		if s.Name == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("schema %q not found in catalog %s", name, catalog)
	}

	cc.Session.Apply(func(sel *session.Selection) {
		sel.Catalog = catalog
		sel.Schema = name
	})
	return OK(map[string]any{"catalog": catalog, "schema": name},
		fmt.Sprintf("Active schema is now %s.%s", catalog, name)), nil
}

func handleShowSchema(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	catalog := stringArgDefault(args, "catalog", cc.Session.Catalog())
	schema := stringArgDefault(args, "schema", cc.Session.Schema())
	if catalog == "" || schema == "" {
		return Fail("no schema selected. Use /select-schema or pass catalog and schema"), nil
	}

	tables, err := client.ListTables(ctx, catalog, schema)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{t.Name, t.TableType, fmt.Sprintf("%d", len(t.Columns))})
	}
	res := OK(map[string]any{
		"title":   fmt.Sprintf("Schema %s.%s", catalog, schema),
		"headers": []string{"Table", "Type", "Columns"},
		"rows":    rows,
		"count":   len(tables),
		"catalog": catalog,
		"schema":  schema,
	}, fmt.Sprintf("Schema %s.%s has %d tables", catalog, schema, len(tables)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}
