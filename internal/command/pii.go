package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quocvuong92/lake-cli/internal/databricks"
	"github.com/quocvuong92/lake-cli/internal/llm"
)

// piiScanPrompt asks the model to classify columns. The reply must be a bare
// JSON array so parsePIIReply can pull it out of whatever prose surrounds it.
const piiScanPrompt = `You classify table columns for personally identifiable information.
Given a list of columns as "name: type", reply with ONLY a JSON array of
objects {"column": <name>, "semantic": <tag>} for the columns that contain
PII. Allowed semantic tags: given-name, surname, full-name, email, phone,
address, city, state, postal, country, birthdate, ssn, ip-address,
account-id, other. Reply with [] if no column contains PII.`

// piiColumn is one classified column.
type piiColumn struct {
	Column   string `json:"column"`
	Semantic string `json:"semantic"`
}

func parsePIIReply(content string) ([]piiColumn, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("model reply contains no JSON array")
	}
	var cols []piiColumn
	if err := json.Unmarshal([]byte(content[start:end+1]), &cols); err != nil {
		return nil, fmt.Errorf("failed to parse model reply: %w", err)
	}
	return cols, nil
}

// scanColumns asks the LLM which of the table's columns carry PII.
func scanColumns(ctx context.Context, client llm.Client, table *databricks.Table) ([]piiColumn, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Table %s columns:\n", table.FullName())
	for _, col := range table.Columns {
		fmt.Fprintf(&sb, "%s: %s\n", col.Name, col.TypeName)
	}

	reply, err := client.Chat(ctx, []llm.Message{
		{Role: "system", Content: piiScanPrompt},
		{Role: "user", Content: sb.String()},
	}, nil)
	if err != nil {
		return nil, err
	}
	return parsePIIReply(reply.Content)
}

func handleScanPII(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	if cc.LLM == nil {
		return Fail("no LLM configured; PII scanning needs one"), nil
	}
	fullName, err := resolveTableName(cc, stringArg(args, "table"))
	if err != nil {
		return nil, err
	}

	table, err := client.GetTable(ctx, fullName)
	if err != nil {
		return nil, err
	}
	cols, err := scanColumns(ctx, cc.LLM, table)
	if err != nil {
		return nil, fmt.Errorf("PII scan of %s failed: %w", fullName, err)
	}

	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		rows = append(rows, []string{c.Column, c.Semantic})
	}
	res := OK(map[string]any{
		"title":     "PII columns in " + fullName,
		"headers":   []string{"Column", "Semantic"},
		"rows":      rows,
		"table":     fullName,
		"pii_count": len(cols),
		"count":     len(cols),
	}, fmt.Sprintf("Found %d PII columns in %s", len(cols), fullName))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleTagPII(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	warehouseID := cc.Session.Warehouse()
	if warehouseID == "" {
		return Fail("no warehouse selected. Tagging runs SQL and needs one"), nil
	}
	fullName, err := resolveTableName(cc, stringArg(args, "table"))
	if err != nil {
		return nil, err
	}
	column := stringArg(args, "column")
	semantic := stringArg(args, "semantic")

	if err := client.SetColumnTag(ctx, warehouseID, fullName, column, semantic); err != nil {
		return nil, fmt.Errorf("failed to tag %s.%s: %w", fullName, column, err)
	}
	return OK(map[string]any{
		"table":    fullName,
		"column":   column,
		"semantic": semantic,
	}, fmt.Sprintf("Tagged %s.%s as %s", fullName, column, semantic)), nil
}

func handleBulkTagPII(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	if cc.LLM == nil {
		return Fail("no LLM configured; PII scanning needs one"), nil
	}
	warehouseID := cc.Session.Warehouse()
	if warehouseID == "" {
		return Fail("no warehouse selected. Tagging runs SQL and needs one"), nil
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

	var rows [][]string
	tagged, failed := 0, 0
	for i := range tables {
		table := &tables[i]
		cols, err := scanColumns(ctx, cc.LLM, table)
		if err != nil {
			rows = append(rows, []string{table.FullName(), "", "scan failed: " + err.Error()})
			failed++
			continue
		}
		for _, c := range cols {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := client.SetColumnTag(ctx, warehouseID, table.FullName(), c.Column, c.Semantic); err != nil {
				rows = append(rows, []string{table.FullName(), c.Column, "tag failed: " + err.Error()})
				failed++
				continue
			}
			rows = append(rows, []string{table.FullName(), c.Column, c.Semantic})
			tagged++
		}
	}

	res := OK(map[string]any{
		"title":   fmt.Sprintf("Bulk PII tagging in %s.%s", catalog, schema),
		"headers": []string{"Table", "Column", "Result"},
		"rows":    rows,
		"tagged":  tagged,
		"failed":  failed,
		"count":   tagged,
	}, fmt.Sprintf("Tagged %d columns across %d tables (%d failures)", tagged, len(tables), failed))
	if failed > 0 {
		res.WithDisplay(true)
	}
	return res, nil
}
