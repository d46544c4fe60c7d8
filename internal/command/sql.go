package command

import (
	"context"
	"fmt"
)

func handleRunSQL(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	warehouseID := stringArgDefault(args, "warehouse_id", cc.Session.Warehouse())
	if warehouseID == "" {
		return Fail("no warehouse selected. Use /select-warehouse or pass warehouse_id"), nil
	}
	statement := stringArg(args, "sql")

	result, err := client.ExecuteSQL(ctx, warehouseID, statement)
	if err != nil {
		return nil, err
	}
	res := OK(map[string]any{
		"title":        "Query results",
		"headers":      result.Columns,
		"rows":         result.Rows,
		"count":        len(result.Rows),
		"statement_id": result.StatementID,
	}, fmt.Sprintf("Query returned %d rows", len(result.Rows)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}
