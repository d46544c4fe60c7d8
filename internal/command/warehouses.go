package command

import (
	"context"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/databricks"
	"github.com/quocvuong92/lake-cli/internal/session"
)

func handleListWarehouses(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	warehouses, err := client.ListWarehouses(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(warehouses))
	for _, w := range warehouses {
		rows = append(rows, []string{w.ID, w.Name, w.ClusterSize, w.State})
	}
	res := OK(map[string]any{
		"title":        "SQL Warehouses",
		"headers":      []string{"ID", "Name", "Size", "State"},
		"rows":         rows,
		"count":        len(warehouses),
		"active_value": cc.Session.Warehouse(),
		"key_column":   0,
	}, fmt.Sprintf("Found %d SQL warehouses", len(warehouses)))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}

func handleSelectWarehouse(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "warehouse_id")

	w, err := client.GetWarehouse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("warehouse %q not found: %w", id, err)
	}

	cc.Session.Apply(func(sel *session.Selection) {
		sel.Warehouse = w.ID
	})
	return OK(map[string]any{"warehouse_id": w.ID, "name": w.Name},
		fmt.Sprintf("Active warehouse is now %s (%s)", w.Name, w.ID)), nil
}

func handleCreateWarehouse(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	req := databricks.CreateWarehouseRequest{
		Name:         stringArg(args, "name"),
		ClusterSize:  stringArgDefault(args, "cluster_size", "2X-Small"),
		AutoStopMins: intArg(args, "auto_stop_mins", 10),
	}
	w, err := client.CreateWarehouse(ctx, req)
	if err != nil {
		return nil, err
	}
	return OK(map[string]any{"warehouse_id": w.ID, "name": w.Name, "cluster_size": w.ClusterSize},
		fmt.Sprintf("Created warehouse %s (%s, %s)", w.Name, w.ID, w.ClusterSize)), nil
}

func handleShowWarehouse(ctx context.Context, cc *Context, args map[string]any) (*Result, error) {
	client, err := cc.DatabricksClient()
	if err != nil {
		return nil, err
	}
	id := stringArgDefault(args, "warehouse_id", cc.Session.Warehouse())
	if id == "" {
		return Fail("no warehouse selected. Use /select-warehouse or pass an id"), nil
	}
	w, err := client.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	res := OK(map[string]any{
		"title":   "Warehouse " + w.Name,
		"headers": []string{"Field", "Value"},
		"rows": [][]string{
			{"ID", w.ID},
			{"Name", w.Name},
			{"Size", w.ClusterSize},
			{"State", w.State},
		},
		"warehouse_id": w.ID,
		"state":        w.State,
	}, fmt.Sprintf("Warehouse %s is %s", w.Name, w.State))
	if boolArg(args, "display") {
		res.WithDisplay(true)
	}
	return res, nil
}
