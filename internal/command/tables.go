package command

import (
	"context"
	"fmt"
	"strings"
)

func handleListTables(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
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
		rows = append(rows, []string{t.Name, t.TableType, fmt.Sprintf("%d", len(t.Columns)), t.Comment})
	}
	res := OK(map[string]any{
		"title":   fmt.Sprintf("Tables in %s.%s", catalog, schema),
		"headers": []string{"Name", "Type", "Columns", "Comment"},
		"rows":    rows,
		"count":   len(tables),
		"catalog": catalog,
		"schema":  schema,
	}, fmt.Sprintf("Found %d tables in %s.%s", len(tables), catalog, schema))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

// resolveTableName turns a possibly-bare table name into catalog.schema.table
// using the session selections for the missing parts.
func resolveTableName(cc *Context, name string) (string, error) {
	switch strings.Count(name, ".") {
	case 2:
		return name, nil
	case 0:
		catalog := cc.Session.Catalog()
		schema := cc.Session.Schema()
		if catalog == "" || schema == "" {
			return "", fmt.Errorf("table %q is not fully qualified and no schema is selected", name)
		}
		return catalog + "." + schema + "." + name, nil
	default:
		return "", fmt.Errorf("table name %q must be bare or fully qualified (catalog.schema.table)", name)
	}
}

func handleShowTable(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	fullName, err := resolveTableName(cc, stringArg(args, "table"))
	if err != nil {
		return nil, err
	}

	table, err := client.GetTable(ctx, fullName)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		rows = append(rows, []string{col.Name, col.TypeName, col.Comment})
	}
	res := OK(map[string]any{
		"title":   "Table " + table.FullName(),
		"headers": []string{"Column", "Type", "Comment"},
		"rows":    rows,
		"table":   table.FullName(),
		"count":   len(table.Columns),
	}, fmt.Sprintf("Table %s has %d columns", table.FullName(), len(table.Columns)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}
