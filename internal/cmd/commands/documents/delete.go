package documents

import (
	"context"
	"flag"
	"fmt"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

type DeleteCommand struct {
	*base.Command

	client   base.ClientFlags
	flagUser string
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a document"
}

func (c *DeleteCommand) Help() string {
	return `Usage: tdoc delete [options] <id>

  Delete the document with the given id and print the tDoc response.` +
		c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("delete", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	return f
}

func (c *DeleteCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	id, err := base.DocumentID(flags.Args())
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	res, err := client.DocumentDelete(context.Background(), tdoc.DocumentParams{ID: id, User: c.flagUser})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error deleting document: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, res); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
