package catalog

import (
	"context"
	"flag"
	"fmt"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

type CompaniesCommand struct {
	*base.Command

	client base.ClientFlags
}

func (c *CompaniesCommand) Synopsis() string {
	return "List companies"
}

func (c *CompaniesCommand) Help() string {
	return `Usage: tdoc companies [options]

  List the companies visible to the user.` +
		c.Flags().Help()
}

func (c *CompaniesCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("companies", flag.ContinueOnError))
	c.client.Register(f)
	return f
}

func (c *CompaniesCommand) Run(args []string) int {
	return run(c.Command, c.Flags(), &c.client, args, func(ctx context.Context, client *tdoc.Client) (any, error) {
		return client.Companies(ctx)
	})
}

type DocTypesCommand struct {
	*base.Command

	client base.ClientFlags
}

func (c *DocTypesCommand) Synopsis() string {
	return "List document types"
}

func (c *DocTypesCommand) Help() string {
	return `Usage: tdoc doctypes [options]

  List the document types visible to the user.` +
		c.Flags().Help()
}

func (c *DocTypesCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("doctypes", flag.ContinueOnError))
	c.client.Register(f)
	return f
}

func (c *DocTypesCommand) Run(args []string) int {
	return run(c.Command, c.Flags(), &c.client, args, func(ctx context.Context, client *tdoc.Client) (any, error) {
		return client.DocTypes(ctx)
	})
}

type DocTypeCommand struct {
	*base.Command

	client base.ClientFlags
	name   string
}

func (c *DocTypeCommand) Synopsis() string {
	return "Print the definition of a document type"
}

func (c *DocTypeCommand) Help() string {
	return `Usage: tdoc doctype [options] <name>

  Print the definition of a document type, including its custom settings.` +
		c.Flags().Help()
}

func (c *DocTypeCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("doctype", flag.ContinueOnError))
	c.client.Register(f)
	return f
}

func (c *DocTypeCommand) Run(args []string) int {
	return run(c.Command, c.Flags(), &c.client, args, func(ctx context.Context, client *tdoc.Client) (any, error) {
		return client.DocType(ctx, tdoc.DocTypeParams{Name: c.name, Company: c.client.Company})
	}, func(rest []string) error {
		if len(rest) != 1 {
			return fmt.Errorf("expected one document type, got %d arguments", len(rest))
		}
		c.name = rest[0]
		return nil
	})
}

// run parses the flags, checks the positional arguments, builds the client
// and prints the result of call.
func run(
	c *base.Command,
	flags *base.FlagSet,
	cf *base.ClientFlags,
	args []string,
	call func(context.Context, *tdoc.Client) (any, error),
	checkArgs ...func([]string) error,
) int {
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	rest := flags.Args()
	if len(checkArgs) == 0 && len(rest) > 0 {
		c.UI.Error(fmt.Sprintf("unexpected arguments: %v", rest))
		return 1
	}
	for _, check := range checkArgs {
		if err := check(rest); err != nil {
			c.UI.Error(err.Error())
			return 1
		}
	}

	client, err := c.Client(cf)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	out, err := call(context.Background(), client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error: %v", err))
		return 1
	}

	if err := c.Output(cf.Format, out); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
