// Package databricks is a thin client for the Databricks REST APIs the
// shell uses: Unity Catalog, SQL warehouses, statement execution, job runs
// and serving endpoints.
package databricks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quocvuong92/lake-cli/internal/constants"
)

// Client talks to one Databricks workspace.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	// pollInterval controls statement polling, retryBackoff the wait
	// after a transient API failure; tests shorten both.
	pollInterval time.Duration
	retryBackoff time.Duration
}

// NewClient creates a workspace client. baseURL is the workspace URL
// without a trailing slash, e.g. https://acme.cloud.databricks.com.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:      baseURL,
		token:        token,
		httpClient:   &http.Client{Timeout: constants.DefaultHandlerTimeout},
		pollInterval: constants.DefaultSQLPollInterval,
		retryBackoff: initialBackoff,
	}
}

// APIError is a non-2xx response from the workspace.
type APIError struct {
	StatusCode int
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("databricks: %s: %s (status %d)", e.ErrorCode, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("databricks: %s (status %d)", e.Message, e.StatusCode)
}

// do issues an authenticated request, retrying rate limits and transient
// server errors, and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffFor(attempt-1, c.retryBackoff)):
			}
		}

		err := c.doOnce(ctx, method, u, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !retryableStatus(apiErr.StatusCode) {
			return err
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, u, path string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		// Error bodies are JSON when the API is reachable; keep the raw
		// body as the message when they are not.
		var parsed APIError
		if json.Unmarshal(data, &parsed) == nil && parsed.Message != "" {
			apiErr.ErrorCode = parsed.ErrorCode
			apiErr.Message = parsed.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response from %s: %w", path, err)
		}
	}
	return nil
}

// ListCatalogs returns all catalogs in the metastore.
func (c *Client) ListCatalogs(ctx context.Context) ([]Catalog, error) {
	var out struct {
		Catalogs []Catalog `json:"catalogs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/2.1/unity-catalog/catalogs", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Catalogs, nil
}

// GetCatalog returns one catalog by name.
func (c *Client) GetCatalog(ctx context.Context, name string) (*Catalog, error) {
	var out Catalog
	if err := c.do(ctx, http.MethodGet, "/api/2.1/unity-catalog/catalogs/"+url.PathEscape(name), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSchemas returns the schemas of a catalog.
func (c *Client) ListSchemas(ctx context.Context, catalog string) ([]Schema, error) {
	q := url.Values{"catalog_name": {catalog}}
	var out struct {
		Schemas []Schema `json:"schemas"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/2.1/unity-catalog/schemas", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Schemas, nil
}

// ListTables returns the tables of a schema, including column metadata.
func (c *Client) ListTables(ctx context.Context, catalog, schema string) ([]Table, error) {
	q := url.Values{"catalog_name": {catalog}, "schema_name": {schema}}
	var out struct {
		Tables []Table `json:"tables"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/2.1/unity-catalog/tables", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

// GetTable returns one table by its full name (catalog.schema.table).
func (c *Client) GetTable(ctx context.Context, fullName string) (*Table, error) {
	var out Table
	if err := c.do(ctx, http.MethodGet, "/api/2.1/unity-catalog/tables/"+url.PathEscape(fullName), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWarehouses returns all SQL warehouses in the workspace.
func (c *Client) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	var out struct {
		Warehouses []Warehouse `json:"warehouses"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/2.0/sql/warehouses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Warehouses, nil
}

// GetWarehouse returns one SQL warehouse by id.
func (c *Client) GetWarehouse(ctx context.Context, id string) (*Warehouse, error) {
	var out Warehouse
	if err := c.do(ctx, http.MethodGet, "/api/2.0/sql/warehouses/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWarehouse creates a SQL warehouse and returns its id.
func (c *Client) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*Warehouse, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/2.0/sql/warehouses", nil, req, &out); err != nil {
		return nil, err
	}
	return &Warehouse{ID: out.ID, Name: req.Name, ClusterSize: req.ClusterSize}, nil
}

// ExecuteSQL submits a statement to a warehouse and polls until it reaches
// a terminal state. A FAILED or CANCELED statement is returned as an error.
func (c *Client) ExecuteSQL(ctx context.Context, warehouseID, statement string) (*SQLResult, error) {
	body := map[string]any{
		"statement":    statement,
		"warehouse_id": warehouseID,
		"wait_timeout": "30s",
	}
	var resp StatementResponse
	if err := c.do(ctx, http.MethodPost, "/api/2.0/sql/statements", nil, body, &resp); err != nil {
		return nil, err
	}

	for !isTerminalState(resp.Status.State) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		var polled StatementResponse
		if err := c.do(ctx, http.MethodGet, "/api/2.0/sql/statements/"+url.PathEscape(resp.StatementID), nil, nil, &polled); err != nil {
			return nil, err
		}
		polled.StatementID = resp.StatementID
		resp = polled
	}

	if resp.Status.State != "SUCCEEDED" {
		msg := "statement " + resp.Status.State
		if resp.Status.Error != nil && resp.Status.Error.Message != "" {
			msg = resp.Status.Error.Message
		}
		return nil, fmt.Errorf("sql statement failed: %s", msg)
	}

	result := &SQLResult{StatementID: resp.StatementID}
	if resp.Manifest != nil {
		for _, col := range resp.Manifest.Schema.Columns {
			result.Columns = append(result.Columns, col.Name)
		}
	}
	if resp.Result != nil {
		result.Rows = resp.Result.DataArray
	}
	return result, nil
}

func isTerminalState(state string) bool {
	switch state {
	case "SUCCEEDED", "FAILED", "CANCELED", "CLOSED":
		return true
	}
	return false
}

// ListJobRuns returns recent job runs, newest first.
func (c *Client) ListJobRuns(ctx context.Context, limit int) ([]JobRun, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Runs []JobRun `json:"runs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/2.1/jobs/runs/list", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

// GetJobRun returns one job run by id.
func (c *Client) GetJobRun(ctx context.Context, runID int64) (*JobRun, error) {
	q := url.Values{"run_id": {strconv.FormatInt(runID, 10)}}
	var out JobRun
	if err := c.do(ctx, http.MethodGet, "/api/2.1/jobs/runs/get", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListServingEndpoints returns the model serving endpoints of the workspace.
func (c *Client) ListServingEndpoints(ctx context.Context) ([]ServingEndpoint, error) {
	var out struct {
		Endpoints []ServingEndpoint `json:"endpoints"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/2.0/serving-endpoints", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Endpoints, nil
}

// SetColumnTag applies a Unity Catalog tag to a column with ALTER TABLE,
// which needs a running warehouse.
func (c *Client) SetColumnTag(ctx context.Context, warehouseID, tableFullName, column, tag string) error {
	stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET TAGS ('pii' = '%s')", tableFullName, column, tag)
	_, err := c.ExecuteSQL(ctx, warehouseID, stmt)
	return err
}
