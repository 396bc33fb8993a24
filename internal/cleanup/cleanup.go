// Package cleanup removes the spaces, tables and views created by the
// example commands.
package cleanup

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

// Keywords match the titles of spaces created by the examples and the demo.
var Keywords = []string{
	"Test Metrics Space",
	"Test Data Sources Space",
	"Test Permissions Space",
	"Test Context Space",
	"Finance Metrics Space",
	"Finance Data Space",
	"Finance Analytics Space",
	"Genie API Examples",
	"Genie API Demo",
}

// Objects are the tables and views created in the example schema.
var Objects = []string{"invoices", "payments", "accounts", "mv_invoice"}

// Client is the subset of *genie.Client used for cleanup.
type Client interface {
	ListSpaces(ctx context.Context) ([]genie.Space, error)
	DeleteSpace(ctx context.Context, spaceID string) error
	ExecuteSQL(ctx context.Context, statement string) (*genie.StatementResponse, error)
}

// Cleaner removes example artifacts from one catalog and schema.
type Cleaner struct {
	client  Client
	logger  hclog.Logger
	catalog string
	schema  string
}

// New returns a Cleaner. A nil logger disables logging.
func New(client Client, logger hclog.Logger, catalog, schema string) *Cleaner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cleaner{
		client:  client,
		logger:  logger.Named("cleanup"),
		catalog: catalog,
		schema:  schema,
	}
}

// Matches reports whether title contains one of the keywords, ignoring case.
func Matches(title string, keywords []string) bool {
	title = strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(title, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// FindSpaces returns the spaces whose title matches Keywords.
func (c *Cleaner) FindSpaces(ctx context.Context) ([]genie.Space, error) {
	spaces, err := c.client.ListSpaces(ctx)
	if err != nil {
		return nil, err
	}

	var matches []genie.Space
	for _, s := range spaces {
		if Matches(s.Title, Keywords) {
			matches = append(matches, s)
		}
	}
	c.logger.Debug("found example spaces", "total", len(spaces), "matched", len(matches))
	return matches, nil
}

// DeleteSpaces deletes every space, continuing past failures. All errors
// are returned together.
func (c *Cleaner) DeleteSpaces(ctx context.Context, spaces []genie.Space) error {
	var result *multierror.Error
	for _, s := range spaces {
		if err := c.client.DeleteSpace(ctx, s.SpaceID); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		c.logger.Info("deleted space", "space_id", s.SpaceID, "title", s.Title)
	}
	return result.ErrorOrNil()
}

// DropResult is the outcome of dropping one object.
type DropResult struct {
	Object string
	State  genie.StatementState
}

// DropObjects drops the example tables and views. Each object is dropped
// as a table first and as a view when that does not succeed.
func (c *Cleaner) DropObjects(ctx context.Context) ([]DropResult, error) {
	results := make([]DropResult, 0, len(Objects))
	for _, name := range Objects {
		fqn := fmt.Sprintf("%s.%s.%s", c.catalog, c.schema, name)

		state, err := c.exec(ctx, "DROP TABLE IF EXISTS "+fqn)
		if err != nil {
			return results, err
		}
		if state != genie.StatementSucceeded {
			c.logger.Debug("drop table failed, trying view", "object", fqn, "state", state)
			if state, err = c.exec(ctx, "DROP VIEW IF EXISTS "+fqn); err != nil {
				return results, err
			}
		}
		results = append(results, DropResult{Object: fqn, State: state})
	}
	return results, nil
}

// DropSchema drops the example schema. It fails on the server when the
// schema still has objects.
func (c *Cleaner) DropSchema(ctx context.Context) (DropResult, error) {
	fqn := fmt.Sprintf("%s.%s", c.catalog, c.schema)
	state, err := c.exec(ctx, "DROP SCHEMA IF EXISTS "+fqn)
	return DropResult{Object: fqn, State: state}, err
}

func (c *Cleaner) exec(ctx context.Context, statement string) (genie.StatementState, error) {
	resp, err := c.client.ExecuteSQL(ctx, statement)
	if err != nil {
		return "", err
	}
	return resp.Status.State, nil
}
