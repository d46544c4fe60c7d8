package command

import (
	"errors"

	"github.com/quocvuong92/lake-cli/internal/config"
	"github.com/quocvuong92/lake-cli/internal/databricks"
	"github.com/quocvuong92/lake-cli/internal/llm"
	"github.com/quocvuong92/lake-cli/internal/redshift"
	"github.com/quocvuong92/lake-cli/internal/session"
)

// Context is everything a handler may touch: configuration, the session
// selections, and the cloud clients for the active data provider. Exactly
// one of Databricks or Redshift is non-nil in a configured shell; the
// accessors below turn a nil client into a friendly error instead of a
// panic deep inside a handler.
type Context struct {
	Config     *config.Config
	Session    *session.State
	Databricks *databricks.Client
	Redshift   *redshift.Client
	LLM        llm.Client
}

var (
	errNoDatabricks = errors.New("no Databricks workspace connected. Set DATABRICKS_HOST and DATABRICKS_TOKEN")
	errNoRedshift   = errors.New("no Redshift workgroup connected. Set REDSHIFT_WORKGROUP and REDSHIFT_DATABASE")
)

// DatabricksClient returns the Databricks client or an error when the shell
// is not connected to a workspace.
func (c *Context) DatabricksClient() (*databricks.Client, error) {
	if c.Databricks == nil {
		return nil, errNoDatabricks
	}
	return c.Databricks, nil
}

// RedshiftClient returns the Redshift client or an error when the shell is
// not connected to a workgroup.
func (c *Context) RedshiftClient() (*redshift.Client, error) {
	if c.Redshift == nil {
		return nil, errNoRedshift
	}
	return c.Redshift, nil
}
