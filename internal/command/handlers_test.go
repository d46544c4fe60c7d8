package command

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quocvuong92/lake-cli/internal/config"
	"github.com/quocvuong92/lake-cli/internal/constants"
	"github.com/quocvuong92/lake-cli/internal/databricks"
	"github.com/quocvuong92/lake-cli/internal/llm"
	"github.com/quocvuong92/lake-cli/internal/session"
)

// newDatabricksContext builds a Context whose Databricks client talks to a
// test server running handler.
func newDatabricksContext(t *testing.T, handler http.HandlerFunc) *Context {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewConfig()
	cfg.DataProvider = constants.ProviderDatabricks
	cfg.LLMProvider = "anthropic"
	cfg.Model = constants.DefaultModel
	cfg.WorkspaceURL = server.URL
	cfg.Token = "test-token"

	return &Context{
		Config:     cfg,
		Session:    session.New(session.Selection{}),
		Databricks: databricks.NewClient(server.URL, "test-token"),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestHandleListCatalogs(t *testing.T) {
	cc := newDatabricksContext(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.1/unity-catalog/catalogs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(t, w, map[string]any{"catalogs": []map[string]any{
			{"name": "bronze", "owner": "data-eng"},
			{"name": "silver", "owner": "data-eng"},
		}})
	})
	cc.Session.Apply(func(sel *session.Selection) { sel.Catalog = "silver" })

	res, err := handleListCatalogs(context.Background(), cc, map[string]any{})
	if err != nil {
		t.Fatalf("handleListCatalogs() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("result not successful: %s", res.Message)
	}
	if res.Data["count"] != 2 {
		t.Errorf("count = %v, want 2", res.Data["count"])
	}
	if res.Data["active_value"] != "silver" {
		t.Errorf("active_value = %v, want silver", res.Data["active_value"])
	}
	if res.Display != nil {
		t.Error("Display should be nil without the display argument")
	}
}

func TestHandleListCatalogsDisplayFlag(t *testing.T) {
	cc := newDatabricksContext(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"catalogs": []map[string]any{}})
	})

	res, err := handleListCatalogs(context.Background(), cc, map[string]any{"display": true})
	if err != nil {
		t.Fatalf("handleListCatalogs() error = %v", err)
	}
	if res.Display == nil || !*res.Display {
		t.Error("Display should be set true when the display argument is true")
	}
}

func TestHandleSelectCatalogClearsSchema(t *testing.T) {
	cc := newDatabricksContext(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"name": "bronze"})
	})
	cc.Session.Apply(func(sel *session.Selection) {
		sel.Catalog = "silver"
		sel.Schema = "main"
	})

	res, err := handleSelectCatalog(context.Background(), cc, map[string]any{"catalog": "bronze"})
	if err != nil {
		t.Fatalf("handleSelectCatalog() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("result not successful: %s", res.Message)
	}

	sel := cc.Session.Snapshot()
	if sel.Catalog != "bronze" {
		t.Errorf("catalog = %q, want bronze", sel.Catalog)
	}
	if sel.Schema != "" {
		t.Errorf("schema = %q, want cleared", sel.Schema)
	}
}

func TestHandleSelectCatalogUnknownKeepsSelection(t *testing.T) {
	cc := newDatabricksContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]any{"error_code": "CATALOG_DOES_NOT_EXIST", "message": "no such catalog"})
	})
	cc.Session.Apply(func(sel *session.Selection) {
		sel.Catalog = "silver"
		sel.Schema = "main"
	})

	_, err := handleSelectCatalog(context.Background(), cc, map[string]any{"catalog": "missing"})
	if err == nil {
		t.Fatal("handleSelectCatalog() should fail for an unknown catalog")
	}

	sel := cc.Session.Snapshot()
	if sel.Catalog != "silver" || sel.Schema != "main" {
		t.Errorf("selection changed on failure: %+v", sel)
	}
}

func TestHandleRunSQLNoWarehouse(t *testing.T) {
	cc := newDatabricksContext(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without a warehouse")
	})

	res, err := handleRunSQL(context.Background(), cc, map[string]any{"sql": "select 1"})
	if err != nil {
		t.Fatalf("handleRunSQL() error = %v", err)
	}
	if res.Success {
		t.Error("result should not be successful without a warehouse")
	}
}

func TestHandleRunSQL(t *testing.T) {
	cc := newDatabricksContext(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"statement_id": "stmt-1",
			"status":       map[string]any{"state": "SUCCEEDED"},
			"manifest": map[string]any{"schema": map[string]any{"columns": []map[string]any{
				{"name": "id"}, {"name": "email"},
			}}},
			"result": map[string]any{"data_array": [][]string{{"1", "a@example.com"}}},
		})
	})
	cc.Session.Apply(func(sel *session.Selection) { sel.Warehouse = "wh-1" })

	res, err := handleRunSQL(context.Background(), cc, map[string]any{"sql": "select * from users"})
	if err != nil {
		t.Fatalf("handleRunSQL() error = %v", err)
	}
	headers := res.Data["headers"].([]string)
	if len(headers) != 2 || headers[1] != "email" {
		t.Errorf("headers = %v, want [id email]", headers)
	}
	if res.Data["count"] != 1 {
		t.Errorf("count = %v, want 1", res.Data["count"])
	}
}

func TestResolveTableName(t *testing.T) {
	cc := &Context{Session: session.New(session.Selection{Catalog: "bronze", Schema: "crm"})}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare name", "users", "bronze.crm.users", false},
		{"fully qualified", "a.b.c", "a.b.c", false},
		{"partial", "crm.users", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTableName(cc, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveTableName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveTableName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveTableNameNoSelection(t *testing.T) {
	cc := &Context{Session: session.New(session.Selection{})}
	if _, err := resolveTableName(cc, "users"); err == nil {
		t.Error("bare name without a selected schema should fail")
	}
}

func TestHandleScanPII(t *testing.T) {
	cc := newDatabricksContext(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"name": "users", "catalog_name": "bronze", "schema_name": "crm",
			"columns": []map[string]any{
				{"name": "id", "type_name": "BIGINT"},
				{"name": "email", "type_name": "STRING"},
			},
		})
	})
	cc.LLM = &llm.MockClient{Responses: []*llm.Message{
		{Role: "assistant", Content: `[{"column":"email","semantic":"email"}]`},
	}}

	res, err := handleScanPII(context.Background(), cc, map[string]any{"table": "bronze.crm.users"})
	if err != nil {
		t.Fatalf("handleScanPII() error = %v", err)
	}
	if res.Data["pii_count"] != 1 {
		t.Errorf("pii_count = %v, want 1", res.Data["pii_count"])
	}
	rows := res.Data["rows"].([][]string)
	if len(rows) != 1 || rows[0][0] != "email" || rows[0][1] != "email" {
		t.Errorf("rows = %v, want [[email email]]", rows)
	}
}

func TestParsePIIReply(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"column":"email","semantic":"email"}]`, 1, false},
		{"surrounded by prose", "Here you go:\n[{\"column\":\"ssn\",\"semantic\":\"ssn\"}]\nDone.", 1, false},
		{"empty array", `[]`, 0, false},
		{"no array", "I cannot help with that.", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := parsePIIReply(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePIIReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(cols) != tt.want {
				t.Errorf("parsePIIReply() returned %d columns, want %d", len(cols), tt.want)
			}
		})
	}
}

func TestHandleStatus(t *testing.T) {
	cfg := config.NewConfig()
	cfg.DataProvider = constants.ProviderDatabricks
	cfg.LLMProvider = "anthropic"
	cfg.Model = constants.DefaultModel
	cfg.WorkspaceURL = "https://example.cloud.databricks.com"
	cc := &Context{
		Config:  cfg,
		Session: session.New(session.Selection{Catalog: "bronze", Warehouse: "wh-1"}),
	}

	res, err := handleStatus(context.Background(), cc, nil)
	if err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	if res.Data["catalog"] != "bronze" {
		t.Errorf("catalog = %v, want bronze", res.Data["catalog"])
	}
	if res.Data["warehouse"] != "wh-1" {
		t.Errorf("warehouse = %v, want wh-1", res.Data["warehouse"])
	}
}

func TestHandlersWithoutClient(t *testing.T) {
	cfg := config.NewConfig()
	cfg.DataProvider = constants.ProviderDatabricks
	cc := &Context{Config: cfg, Session: session.New(session.Selection{})}

	if _, err := handleListCatalogs(context.Background(), cc, nil); err == nil {
		t.Error("handleListCatalogs should fail without a workspace client")
	}
	if _, err := handleListDatabases(context.Background(), cc, nil); err == nil {
		t.Error("handleListDatabases should fail without a Redshift client")
	}
}
