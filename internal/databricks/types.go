package databricks

// Catalog is a Unity Catalog catalog.
type Catalog struct {
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Schema is a Unity Catalog schema.
type Schema struct {
	Name        string `json:"name"`
	CatalogName string `json:"catalog_name"`
	Comment     string `json:"comment,omitempty"`
}

// Column is one column of a table.
type Column struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name"`
	Comment  string `json:"comment,omitempty"`
}

// Table is a Unity Catalog table.
type Table struct {
	Name        string   `json:"name"`
	CatalogName string   `json:"catalog_name"`
	SchemaName  string   `json:"schema_name"`
	TableType   string   `json:"table_type,omitempty"`
	Comment     string   `json:"comment,omitempty"`
	Columns     []Column `json:"columns,omitempty"`
}

// FullName returns catalog.schema.name.
func (t Table) FullName() string {
	return t.CatalogName + "." + t.SchemaName + "." + t.Name
}

// Warehouse is a SQL warehouse.
type Warehouse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ClusterSize string `json:"cluster_size,omitempty"`
	State       string `json:"state,omitempty"`
}

// CreateWarehouseRequest is the payload for creating a SQL warehouse.
type CreateWarehouseRequest struct {
	Name           string `json:"name"`
	ClusterSize    string `json:"cluster_size"`
	AutoStopMins   int    `json:"auto_stop_mins,omitempty"`
	MaxNumClusters int    `json:"max_num_clusters,omitempty"`
}

// StatementStatus is the lifecycle state of a submitted SQL statement.
type StatementStatus struct {
	State string `json:"state"` // PENDING, RUNNING, SUCCEEDED, FAILED, CANCELED
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// StatementResponse is the response of the SQL statement execution API.
type StatementResponse struct {
	StatementID string          `json:"statement_id"`
	Status      StatementStatus `json:"status"`
	Manifest    *struct {
		Schema struct {
			Columns []struct {
				Name string `json:"name"`
			} `json:"columns"`
		} `json:"schema"`
	} `json:"manifest,omitempty"`
	Result *struct {
		DataArray [][]string `json:"data_array"`
	} `json:"result,omitempty"`
}

// SQLResult is the flattened outcome of a finished statement.
type SQLResult struct {
	StatementID string
	Columns     []string
	Rows        [][]string
}

// JobRunState describes where a job run is in its lifecycle.
type JobRunState struct {
	LifeCycleState string `json:"life_cycle_state"`
	ResultState    string `json:"result_state,omitempty"`
	StateMessage   string `json:"state_message,omitempty"`
}

// JobRun is one run of a Databricks job.
type JobRun struct {
	RunID     int64       `json:"run_id"`
	RunName   string      `json:"run_name,omitempty"`
	JobID     int64       `json:"job_id,omitempty"`
	State     JobRunState `json:"state"`
	StartTime int64       `json:"start_time,omitempty"`
	EndTime   int64       `json:"end_time,omitempty"`
}

// ServingEndpoint is a model serving endpoint.
type ServingEndpoint struct {
	Name  string `json:"name"`
	State struct {
		Ready string `json:"ready,omitempty"`
	} `json:"state,omitempty"`
	Task string `json:"task,omitempty"`
}
