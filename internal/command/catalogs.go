package command

import (
	"context"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/session"
)

func handleListCatalogs(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	catalogs, err := client.ListCatalogs(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(catalogs))
	for _, c := range catalogs {
		rows = append(rows, []string{c.Name, c.Owner, c.Comment})
	}
	res := OK(map[string]any{
		"title":        "Catalogs",
		"headers":      []string{"Name", "Owner", "Comment"},
		"rows":         rows,
		"count":        len(catalogs),
		"active_value": cc.Session.Catalog(),
		"key_column":   0,
	}, fmt.Sprintf("Found %d catalogs", len(catalogs)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleSelectCatalog(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	name := stringArg(args, "catalog")

	// Verify before committing so a typo never clobbers the selection.
	if _, err := client.GetCatalog(ctx, name); err != nil {
		return nil, fmt.Errorf("catalog %q not found: %w", name, err)
	}

	// Changing catalog invalidates the schema underneath it; both fields
	// move in one commit.
	cc.Session.Apply(func(sel *session.Selection) {
		sel.Catalog = name
		sel.Schema = ""
	})
	return OK(map[string]any{"catalog": name},
		fmt.Sprintf("Active catalog is now %s (schema selection cleared)", name)), nil
}

func handleShowCatalog(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	name := stringArgDefault(args, "catalog", cc.Session.Catalog())
	if name == "" {
		return Fail("no catalog selected. Use /select-catalog or pass one"), nil
	}
	cat, err := client.GetCatalog(ctx, name)
	if err != nil {
		return nil, err
	}
	res := OK(map[string]any{
		"title":   "Catalog " + cat.Name,
		"headers": []string{"Field", "Value"},
		"rows": [][]string{
			{"Name", cat.Name},
			{"Owner", cat.Owner},
			{"Comment", cat.Comment},
		},
		"catalog": cat.Name,
	}, fmt.Sprintf("Catalog %s (owner %s)", cat.Name, cat.Owner))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}
