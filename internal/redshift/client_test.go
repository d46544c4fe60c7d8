package redshift

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
)

// stubAPI implements DataAPI with canned responses.
type stubAPI struct {
	listDatabases func(*redshiftdata.ListDatabasesInput) (*redshiftdata.ListDatabasesOutput, error)
	listSchemas   func(*redshiftdata.ListSchemasInput) (*redshiftdata.ListSchemasOutput, error)
	listTables    func(*redshiftdata.ListTablesInput) (*redshiftdata.ListTablesOutput, error)
	execute       func(*redshiftdata.ExecuteStatementInput) (*redshiftdata.ExecuteStatementOutput, error)
	describe      func(*redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error)

	describeCalls int
}

func (s *stubAPI) ListDatabases(ctx context.Context, params *redshiftdata.ListDatabasesInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ListDatabasesOutput, error) {
	return s.listDatabases(params)
}

func (s *stubAPI) ListSchemas(ctx context.Context, params *redshiftdata.ListSchemasInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ListSchemasOutput, error) {
	return s.listSchemas(params)
}

func (s *stubAPI) ListTables(ctx context.Context, params *redshiftdata.ListTablesInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ListTablesOutput, error) {
	return s.listTables(params)
}

func (s *stubAPI) ExecuteStatement(ctx context.Context, params *redshiftdata.ExecuteStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error) {
	return s.execute(params)
}

func (s *stubAPI) DescribeStatement(ctx context.Context, params *redshiftdata.DescribeStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error) {
	s.describeCalls++
	return s.describe(params)
}

func newStubClient(api *stubAPI) *Client {
	c := NewClientWithAPI(api, "analytics", "dev", "")
	c.pollInterval = time.Millisecond
	return c
}

func TestListDatabases(t *testing.T) {
	api := &stubAPI{
		listDatabases: func(in *redshiftdata.ListDatabasesInput) (*redshiftdata.ListDatabasesOutput, error) {
			if aws.ToString(in.WorkgroupName) != "analytics" {
				t.Errorf("WorkgroupName = %q, want analytics", aws.ToString(in.WorkgroupName))
			}
			if aws.ToString(in.Database) != "dev" {
				t.Errorf("Database = %q, want the default database", aws.ToString(in.Database))
			}
			if in.SecretArn != nil {
				t.Error("SecretArn should be nil when not configured")
			}
			return &redshiftdata.ListDatabasesOutput{Databases: []string{"dev", "prod"}}, nil
		},
	}

	dbs, err := newStubClient(api).ListDatabases(context.Background())
	if err != nil {
		t.Fatalf("ListDatabases() error = %v", err)
	}
	if len(dbs) != 2 || dbs[1] != "prod" {
		t.Errorf("ListDatabases() = %v, want [dev prod]", dbs)
	}
}

func TestListSchemasUsesRequestedDatabase(t *testing.T) {
	api := &stubAPI{
		listSchemas: func(in *redshiftdata.ListSchemasInput) (*redshiftdata.ListSchemasOutput, error) {
			if aws.ToString(in.Database) != "prod" {
				t.Errorf("Database = %q, want prod", aws.ToString(in.Database))
			}
			return &redshiftdata.ListSchemasOutput{Schemas: []string{"public", "staging"}}, nil
		},
	}

	schemas, err := newStubClient(api).ListSchemas(context.Background(), "prod")
	if err != nil {
		t.Fatalf("ListSchemas() error = %v", err)
	}
	if len(schemas) != 2 {
		t.Errorf("ListSchemas() = %v, want 2 schemas", schemas)
	}
}

func TestListTables(t *testing.T) {
	api := &stubAPI{
		listTables: func(in *redshiftdata.ListTablesInput) (*redshiftdata.ListTablesOutput, error) {
			if aws.ToString(in.SchemaPattern) != "public" {
				t.Errorf("SchemaPattern = %q, want public", aws.ToString(in.SchemaPattern))
			}
			return &redshiftdata.ListTablesOutput{Tables: []types.TableMember{
				{Name: aws.String("users"), Schema: aws.String("public"), Type: aws.String("TABLE")},
			}}, nil
		},
	}

	tables, err := newStubClient(api).ListTables(context.Background(), "", "public")
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "users" || tables[0].Type != "TABLE" {
		t.Errorf("ListTables() = %+v", tables)
	}
}

func TestExecuteStatementPollsToFinished(t *testing.T) {
	api := &stubAPI{}
	api.execute = func(in *redshiftdata.ExecuteStatementInput) (*redshiftdata.ExecuteStatementOutput, error) {
		if aws.ToString(in.Sql) != "select 1" {
			t.Errorf("Sql = %q, want select 1", aws.ToString(in.Sql))
		}
		return &redshiftdata.ExecuteStatementOutput{Id: aws.String("stmt-9")}, nil
	}
	api.describe = func(in *redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error) {
		status := types.StatusStringStarted
		if api.describeCalls >= 3 {
			status = types.StatusStringFinished
		}
		return &redshiftdata.DescribeStatementOutput{Status: status}, nil
	}

	id, err := newStubClient(api).ExecuteStatement(context.Background(), "", "select 1")
	if err != nil {
		t.Fatalf("ExecuteStatement() error = %v", err)
	}
	if id != "stmt-9" {
		t.Errorf("id = %q, want stmt-9", id)
	}
	if api.describeCalls < 3 {
		t.Errorf("describe calls = %d, want at least 3", api.describeCalls)
	}
}

func TestExecuteStatementFailed(t *testing.T) {
	api := &stubAPI{}
	api.execute = func(in *redshiftdata.ExecuteStatementInput) (*redshiftdata.ExecuteStatementOutput, error) {
		return &redshiftdata.ExecuteStatementOutput{Id: aws.String("stmt-9")}, nil
	}
	api.describe = func(in *redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error) {
		return &redshiftdata.DescribeStatementOutput{
			Status: types.StatusStringFailed,
			Error:  aws.String("permission denied for relation users"),
		}, nil
	}

	_, err := newStubClient(api).ExecuteStatement(context.Background(), "", "select * from users")
	if err == nil {
		t.Fatal("ExecuteStatement() should fail for a FAILED statement")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("error = %v, should carry the statement error", err)
	}
}

func TestExecuteStatementCancelled(t *testing.T) {
	api := &stubAPI{}
	api.execute = func(in *redshiftdata.ExecuteStatementInput) (*redshiftdata.ExecuteStatementOutput, error) {
		return &redshiftdata.ExecuteStatementOutput{Id: aws.String("stmt-9")}, nil
	}
	api.describe = func(in *redshiftdata.DescribeStatementInput) (*redshiftdata.DescribeStatementOutput, error) {
		return &redshiftdata.DescribeStatementOutput{Status: types.StatusStringStarted}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newStubClient(api).ExecuteStatement(ctx, "", "select 1"); !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteStatement() error = %v, want context.Canceled", err)
	}
}

func TestSecretARNPassedWhenConfigured(t *testing.T) {
	api := &stubAPI{
		listDatabases: func(in *redshiftdata.ListDatabasesInput) (*redshiftdata.ListDatabasesOutput, error) {
			if aws.ToString(in.SecretArn) != "arn:aws:secretsmanager:us-east-1:1:secret:x" {
				t.Errorf("SecretArn = %q, want the configured ARN", aws.ToString(in.SecretArn))
			}
			return &redshiftdata.ListDatabasesOutput{}, nil
		},
	}
	c := NewClientWithAPI(api, "analytics", "dev", "arn:aws:secretsmanager:us-east-1:1:secret:x")

	if _, err := c.ListDatabases(context.Background()); err != nil {
		t.Fatalf("ListDatabases() error = %v", err)
	}
}
