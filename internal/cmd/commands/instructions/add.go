package instructions

import (
	"flag"
	"strings"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type AddSampleQuestionCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *AddSampleQuestionCommand) Synopsis() string {
	return "Add a sample question to a space"
}

func (c *AddSampleQuestionCommand) Help() string {
	return `Usage: geniectl context add-sample-question [options] <space-id> <question>

  Adds a sample question shown in the space UI. Prints the new ID.` +
		c.Flags().Help()
}

func (c *AddSampleQuestionCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("add-sample-question", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *AddSampleQuestionCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 2 {
		return c.Fail("expected arguments: <space-id> <question>")
	}
	spaceID := f.Arg(0)
	question := strings.Join(f.Args()[1:], " ")

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	item := serialized.NewSampleQuestion(question)
	if _, err := s.Syncer.Sync(ctx, spaceID, serialized.SampleQuestions, serialized.Insert(item)); err != nil {
		return c.Fail("error adding sample question: %v", err)
	}
	c.UI.Output(item.Str("id"))
	return 0
}

type AddExampleSQLCommand struct {
	*base.Command

	conn         base.ConnectionFlags
	flagQuestion string
	flagSQL      string
}

func (c *AddExampleSQLCommand) Synopsis() string {
	return "Add an example question and its SQL to a space"
}

func (c *AddExampleSQLCommand) Help() string {
	return `Usage: geniectl context add-example-sql [options] -question <q> -sql <query> <space-id>

  Adds an example question/SQL pair Genie uses when writing queries.
  Prints the new ID.` +
		c.Flags().Help()
}

func (c *AddExampleSQLCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("add-example-sql", flag.ContinueOnError))
	c.conn.Register(f)
	f.StringVar(&c.flagQuestion, "question", "", "(Required) Question the SQL answers")
	f.StringVar(&c.flagSQL, "sql", "", "(Required) SQL query")
	return f
}

func (c *AddExampleSQLCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 1 {
		return c.Fail("expected one argument: <space-id>")
	}
	if c.flagQuestion == "" || c.flagSQL == "" {
		return c.Fail("question and sql flags are required")
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	item := serialized.NewExampleSQL(c.flagQuestion, c.flagSQL)
	if _, err := s.Syncer.Sync(ctx, f.Arg(0), serialized.ExampleQuestionSQLs, serialized.Insert(item)); err != nil {
		return c.Fail("error adding example SQL: %v", err)
	}
	c.UI.Output(item.Str("id"))
	return 0
}
