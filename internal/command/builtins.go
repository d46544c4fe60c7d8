package command

import "github.com/quocvuong92/lake-cli/internal/constants"

// Schema fragment helpers for Definition.Parameters.

func strProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func boolProp(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

// displayProp is shared by every conditional command: the model sets it when
// the user explicitly asked to see the data.
var displayProp = boolProp("Set true when the user asked to see this data; shows the full view")

var (
	databricksOnly = []string{constants.ProviderDatabricks}
	redshiftOnly   = []string{constants.ProviderRedshift}
)

// RegisterBuiltins registers the full command set on r. Called once at
// startup; duplicate names panic because that is a programming error, not
// a runtime condition.
func RegisterBuiltins(r *Registry) {
	// Databricks catalog browsing.
	r.MustRegister(&Definition{
		Name:            "list-catalogs",
		Description:     "List the Unity Catalog catalogs in the workspace",
		Handler:         handleListCatalogs,
		Parameters:      map[string]any{"display": displayProp},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing catalogs",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/list-catalogs",
	})
	r.MustRegister(&Definition{
		Name:            "select-catalog",
		Description:     "Set the active catalog (clears the schema selection)",
		Handler:         handleSelectCatalog,
		Parameters:      map[string]any{"catalog": strProp("Catalog name to select")},
		Required:        []string{"catalog"},
		CondensedAction: "Selecting catalog",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/select-catalog <name>",
	})
	r.MustRegister(&Definition{
		Name:        "catalog",
		Description: "Show details of a catalog",
		Handler:     handleShowCatalog,
		Parameters: map[string]any{
			"catalog": strProp("Catalog name; defaults to the active catalog"),
			"display": displayProp,
		},
		Positional:      []string{"catalog"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Inspecting catalog",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/catalog [name]",
	})

	// Schemas.
	r.MustRegister(&Definition{
		Name:        "list-schemas",
		Description: "List the schemas of a catalog",
		Handler:     handleListSchemas,
		Parameters: map[string]any{
			"catalog": strProp("Catalog name; defaults to the active catalog"),
			"display": displayProp,
		},
		Positional:      []string{"catalog"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing schemas",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/list-schemas [catalog]",
	})
	r.MustRegister(&Definition{
		Name:        "select-schema",
		Description: "Set the active schema",
		Handler:     handleSelectSchema,
		Parameters: map[string]any{
			"schema":  strProp("Schema name to select"),
			"catalog": strProp("Catalog name; defaults to the active catalog"),
		},
		Required:        []string{"schema"},
		Positional:      []string{"schema", "catalog"},
		CondensedAction: "Selecting schema",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/select-schema <name> [catalog]",
	})
	r.MustRegister(&Definition{
		Name:        "schema",
		Description: "Show the tables of a schema",
		Handler:     handleShowSchema,
		Parameters: map[string]any{
			"schema":  strProp("Schema name; defaults to the active schema"),
			"catalog": strProp("Catalog name; defaults to the active catalog"),
			"display": displayProp,
		},
		Positional:      []string{"schema", "catalog"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Inspecting schema",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/schema [name] [catalog]",
	})

	// Tables.
	r.MustRegister(&Definition{
		Name:        "list-tables",
		Description: "List the tables of the active (or given) schema",
		Handler:     handleListTables,
		Parameters: map[string]any{
			"catalog": strProp("Catalog name; defaults to the active catalog"),
			"schema":  strProp("Schema name; defaults to the active schema"),
			"display": displayProp,
		},
		Positional:      []string{"catalog", "schema"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing tables",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/list-tables [catalog] [schema]",
	})
	r.MustRegister(&Definition{
		Name:        "table",
		Description: "Show the columns of a table",
		Handler:     handleShowTable,
		Parameters: map[string]any{
			"table":   strProp("Table name, bare or fully qualified (catalog.schema.table)"),
			"display": displayProp,
		},
		Required:        []string{"table"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Inspecting table",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/table <name>",
	})

	// Warehouses and SQL.
	r.MustRegister(&Definition{
		Name:            "list-warehouses",
		Description:     "List the SQL warehouses of the workspace",
		Handler:         handleListWarehouses,
		Parameters:      map[string]any{"display": displayProp},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing warehouses",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/list-warehouses",
	})
	r.MustRegister(&Definition{
		Name:            "select-warehouse",
		Description:     "Set the active SQL warehouse",
		Handler:         handleSelectWarehouse,
		Parameters:      map[string]any{"warehouse_id": strProp("Warehouse id to select")},
		Required:        []string{"warehouse_id"},
		CondensedAction: "Selecting warehouse",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/select-warehouse <id>",
	})
	r.MustRegister(&Definition{
		Name:        "create-warehouse",
		Description: "Create a new SQL warehouse. Never retry this on failure",
		Handler:     handleCreateWarehouse,
		Parameters: map[string]any{
			"name":           strProp("Name for the new warehouse"),
			"cluster_size":   strProp("Cluster size, e.g. 2X-Small"),
			"auto_stop_mins": intProp("Minutes of idleness before auto-stop"),
		},
		Required:        []string{"name"},
		Positional:      []string{"name", "cluster_size"},
		CondensedAction: "Creating warehouse",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/create-warehouse <name> [size]",
	})
	r.MustRegister(&Definition{
		Name:        "warehouse",
		Description: "Show details of a SQL warehouse",
		Handler:     handleShowWarehouse,
		Parameters: map[string]any{
			"warehouse_id": strProp("Warehouse id; defaults to the active warehouse"),
			"display":      displayProp,
		},
		Positional:      []string{"warehouse_id"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Inspecting warehouse",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/warehouse [id]",
	})
	r.MustRegister(&Definition{
		Name:        "run-sql",
		Description: "Run a SQL statement on the active warehouse. Never retry this on failure",
		Handler:     handleRunSQL,
		Parameters: map[string]any{
			"sql":          strProp("SQL statement to execute"),
			"warehouse_id": strProp("Warehouse id; defaults to the active warehouse"),
			"display":      displayProp,
		},
		Required:        []string{"sql"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Running SQL",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/run-sql <statement>",
	})

	// Jobs.
	r.MustRegister(&Definition{
		Name:        "jobs",
		Description: "List recent job runs",
		Handler:     handleListJobs,
		Parameters: map[string]any{
			"limit":   intProp("Maximum number of runs to return"),
			"display": displayProp,
		},
		Positional:      []string{"limit"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing job runs",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/jobs [limit]",
	})
	r.MustRegister(&Definition{
		Name:        "job-status",
		Description: "Show the status of one job run",
		Handler:     handleJobStatus,
		Parameters: map[string]any{
			"run_id":  intProp("Job run id"),
			"display": displayProp,
		},
		Required:     []string{"run_id"},
		AgentDisplay: DisplayConditional,
		// Failed runs are always worth showing in full.
		DisplayCondition: func(data map[string]any) bool {
			state, _ := data["result_state"].(string)
			return state == "FAILED" || state == "TIMEDOUT"
		},
		CondensedAction: "Checking job run",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/job-status <run_id>",
	})

	// PII workflow.
	r.MustRegister(&Definition{
		Name:        "scan-pii",
		Description: "Scan a table's columns for PII using the model",
		Handler:     handleScanPII,
		Parameters: map[string]any{
			"table":   strProp("Table name, bare or fully qualified"),
			"display": displayProp,
		},
		Required:        []string{"table"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Scanning for PII",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/scan-pii <table>",
	})
	r.MustRegister(&Definition{
		Name:        "tag-pii",
		Description: "Tag one column with a PII semantic tag. Never retry this on failure",
		Handler:     handleTagPII,
		Parameters: map[string]any{
			"table":    strProp("Table name, bare or fully qualified"),
			"column":   strProp("Column to tag"),
			"semantic": strProp("Semantic tag, e.g. email or given-name"),
		},
		Required:        []string{"table", "column", "semantic"},
		CondensedAction: "Tagging PII column",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/tag-pii <table> <column> <semantic>",
	})
	r.MustRegister(&Definition{
		Name:        "bulk-tag-pii",
		Description: "Scan every table of the active schema and tag all detected PII columns. Never retry this on failure",
		Handler:     handleBulkTagPII,
		Parameters: map[string]any{
			"catalog": strProp("Catalog name; defaults to the active catalog"),
			"schema":  strProp("Schema name; defaults to the active schema"),
		},
		Positional:      []string{"catalog", "schema"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Bulk tagging PII",
		Providers:       databricksOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/bulk-tag-pii [catalog] [schema]",
	})

	// Redshift.
	r.MustRegister(&Definition{
		Name:            "list-databases",
		Description:     "List the databases of the Redshift workgroup",
		Handler:         handleListDatabases,
		Parameters:      map[string]any{"display": displayProp},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing databases",
		Providers:       redshiftOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/list-databases",
	})
	r.MustRegister(&Definition{
		Name:            "select-database",
		Description:     "Set the active Redshift database",
		Handler:         handleSelectDatabase,
		Parameters:      map[string]any{"database": strProp("Database name to select")},
		Required:        []string{"database"},
		CondensedAction: "Selecting database",
		Providers:       redshiftOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/select-database <name>",
	})
	r.MustRegister(&Definition{
		Name:        "list-redshift-schemas",
		Description: "List the schemas of a Redshift database",
		Handler:     handleListRedshiftSchemas,
		Parameters: map[string]any{
			"database": strProp("Database name; defaults to the active database"),
			"display":  displayProp,
		},
		Positional:      []string{"database"},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing schemas",
		Providers:       redshiftOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/list-redshift-schemas [database]",
	})
	r.MustRegister(&Definition{
		Name:         "redshift-status",
		Description:  "Show connectivity and selection state of the Redshift workgroup",
		Handler:      handleRedshiftStatus,
		AgentDisplay: DisplayConditional,
		DisplayCondition: func(data map[string]any) bool {
			reachable, ok := data["reachable"].(bool)
			return ok && !reachable
		},
		CondensedAction: "Checking Redshift",
		Providers:       redshiftOnly,
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/redshift-status",
	})

	// Provider-agnostic.
	r.MustRegister(&Definition{
		Name:            "status",
		Description:     "Show the session's providers, model and selections",
		Handler:         handleStatus,
		AgentDisplay:    DisplayFull,
		CondensedAction: "Checking status",
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/status",
	})
	r.MustRegister(&Definition{
		Name:            "list-models",
		Description:     "List the selectable models and workspace serving endpoints",
		Handler:         handleListModels,
		Parameters:      map[string]any{"display": displayProp},
		AgentDisplay:    DisplayConditional,
		CondensedAction: "Listing models",
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/list-models",
	})
	r.MustRegister(&Definition{
		Name:            "select-model",
		Description:     "Set the model used for conversation",
		Handler:         handleSelectModel,
		Parameters:      map[string]any{"model": strProp("Model name to select")},
		Required:        []string{"model"},
		CondensedAction: "Selecting model",
		VisibleToUser:   true,
		VisibleToAgent:  true,
		Usage:           "/select-model <name>",
	})

	r.MustRegister(newHelpDefinition(r))
}
