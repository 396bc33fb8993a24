package instructions

import (
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type ShowCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *ShowCommand) Synopsis() string {
	return "Show the context of a space"
}

func (c *ShowCommand) Help() string {
	return `Usage: geniectl context show [options] <space-id>

  Prints the text instruction, example SQL and sample questions.` +
		c.Flags().Help()
}

func (c *ShowCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("show", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *ShowCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 1 {
		return c.Fail("expected one argument: <space-id>")
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	doc, err := s.Syncer.Export(ctx, f.Arg(0))
	if err != nil {
		return c.Fail("error exporting space: %v", err)
	}

	var (
		texts     []serialized.TextInstruction
		examples  []serialized.ExampleSQL
		questions []serialized.SampleQuestion
	)
	if err := decodeSection(doc, serialized.TextInstructions, &texts); err != nil {
		return c.Fail("%v", err)
	}
	if err := decodeSection(doc, serialized.ExampleQuestionSQLs, &examples); err != nil {
		return c.Fail("%v", err)
	}
	if err := decodeSection(doc, serialized.SampleQuestions, &questions); err != nil {
		return c.Fail("%v", err)
	}

	c.UI.Output("Text instructions:")
	for _, ti := range texts {
		c.UI.Output(fmt.Sprintf("  [%s]", ti.ID))
		for _, line := range strings.Split(strings.Join(ti.Content, ""), "\n") {
			c.UI.Output("    " + line)
		}
	}

	c.UI.Output("Example SQL:")
	for _, ex := range examples {
		c.UI.Output(fmt.Sprintf("  [%s] %s", ex.ID, strings.Join(ex.Question, "")))
		c.UI.Output("    " + strings.Join(ex.SQL, ""))
	}

	c.UI.Output("Sample questions:")
	for _, q := range questions {
		c.UI.Output(fmt.Sprintf("  [%s] %s", q.ID, strings.Join(q.Question, "")))
	}
	return 0
}

func decodeSection[T any](doc *serialized.Document, s serialized.Section, out *[]T) error {
	items, err := doc.Items(s)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", s, err)
	}
	for _, it := range items {
		var v T
		if err := it.Decode(&v); err != nil {
			return fmt.Errorf("error decoding %s: %w", s, err)
		}
		*out = append(*out, v)
	}
	return nil
}
