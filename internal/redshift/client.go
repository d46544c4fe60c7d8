// Package redshift wraps the AWS Redshift Data API for the subset of
// operations the shell exposes: listing databases, schemas and tables, and
// running statements against a serverless workgroup.
package redshift

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
)

// DataAPI is the slice of the redshiftdata client the wrapper uses.
// Narrowed to an interface so tests can stub it.
type DataAPI interface {
	ListDatabases(ctx context.Context, params *redshiftdata.ListDatabasesInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ListDatabasesOutput, error)
	ListSchemas(ctx context.Context, params *redshiftdata.ListSchemasInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ListSchemasOutput, error)
	ListTables(ctx context.Context, params *redshiftdata.ListTablesInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ListTablesOutput, error)
	ExecuteStatement(ctx context.Context, params *redshiftdata.ExecuteStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error)
	DescribeStatement(ctx context.Context, params *redshiftdata.DescribeStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error)
}

// Client is a Redshift Data API wrapper bound to one workgroup.
type Client struct {
	api       DataAPI
	workgroup string
	database  string
	secretARN string

	pollInterval time.Duration
}

// NewClient builds a client from the ambient AWS configuration.
func NewClient(ctx context.Context, workgroup, database, secretARN string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewClientWithAPI(redshiftdata.NewFromConfig(cfg), workgroup, database, secretARN), nil
}

// NewClientWithAPI wires an explicit Data API implementation; used by tests.
func NewClientWithAPI(api DataAPI, workgroup, database, secretARN string) *Client {
	return &Client{
		api:          api,
		workgroup:    workgroup,
		database:     database,
		secretARN:    secretARN,
		pollInterval: 2 * time.Second,
	}
}

// Workgroup returns the workgroup the client is bound to.
func (c *Client) Workgroup() string { return c.workgroup }

// Database returns the default database of the client.
func (c *Client) Database() string { return c.database }

func (c *Client) auth(database string) (workgroup, db *string, secret *string) {
	if database == "" {
		database = c.database
	}
	workgroup = aws.String(c.workgroup)
	db = aws.String(database)
	if c.secretARN != "" {
		secret = aws.String(c.secretARN)
	}
	return
}

// ListDatabases returns the databases visible to the workgroup.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	workgroup, db, secret := c.auth("")
	out, err := c.api.ListDatabases(ctx, &redshiftdata.ListDatabasesInput{
		WorkgroupName: workgroup,
		Database:      db,
		SecretArn:     secret,
	})
	if err != nil {
		return nil, fmt.Errorf("redshift list databases: %w", err)
	}
	return out.Databases, nil
}

// ListSchemas returns the schemas of a database.
func (c *Client) ListSchemas(ctx context.Context, database string) ([]string, error) {
	workgroup, db, secret := c.auth(database)
	out, err := c.api.ListSchemas(ctx, &redshiftdata.ListSchemasInput{
		WorkgroupName: workgroup,
		Database:      db,
		SecretArn:     secret,
	})
	if err != nil {
		return nil, fmt.Errorf("redshift list schemas: %w", err)
	}
	return out.Schemas, nil
}

// TableInfo is one table entry from the Data API.
type TableInfo struct {
	Name   string
	Schema string
	Type   string
}

// ListTables returns the tables of a schema.
func (c *Client) ListTables(ctx context.Context, database, schema string) ([]TableInfo, error) {
	workgroup, db, secret := c.auth(database)
	out, err := c.api.ListTables(ctx, &redshiftdata.ListTablesInput{
		WorkgroupName: workgroup,
		Database:      db,
		SecretArn:     secret,
		SchemaPattern: aws.String(schema),
	})
	if err != nil {
		return nil, fmt.Errorf("redshift list tables: %w", err)
	}
	tables := make([]TableInfo, 0, len(out.Tables))
	for _, t := range out.Tables {
		tables = append(tables, TableInfo{
			Name:   aws.ToString(t.Name),
			Schema: aws.ToString(t.Schema),
			Type:   aws.ToString(t.Type),
		})
	}
	return tables, nil
}

// ExecuteStatement submits SQL and waits for it to finish. Only the
// statement status is returned; result fetching goes through the console
// or a follow-up query, matching how the shell uses Redshift today.
func (c *Client) ExecuteStatement(ctx context.Context, database, sql string) (string, error) {
	workgroup, db, secret := c.auth(database)
	out, err := c.api.ExecuteStatement(ctx, &redshiftdata.ExecuteStatementInput{
		WorkgroupName: workgroup,
		Database:      db,
		SecretArn:     secret,
		Sql:           aws.String(sql),
	})
	if err != nil {
		return "", fmt.Errorf("redshift execute statement: %w", err)
	}

	id := aws.ToString(out.Id)
	for {
		desc, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{Id: out.Id})
		if err != nil {
			return id, fmt.Errorf("redshift describe statement: %w", err)
		}
		switch desc.Status {
		case types.StatusStringFinished:
			return id, nil
		case types.StatusStringFailed, types.StatusStringAborted:
			return id, fmt.Errorf("redshift statement %s: %s", desc.Status, aws.ToString(desc.Error))
		}
		select {
		case <-ctx.Done():
			return id, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}
