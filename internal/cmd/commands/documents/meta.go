package documents

import (
	"context"
	"flag"
	"fmt"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

type MetaCommand struct {
	*base.Command

	client   base.ClientFlags
	flagUser string
}

func (c *MetaCommand) Synopsis() string {
	return "Print the metadata of a document"
}

func (c *MetaCommand) Help() string {
	return `Usage: tdoc meta [options] <id>

  Print the metadata of the document with the given id.` +
		c.Flags().Help()
}

func (c *MetaCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("meta", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	return f
}

func (c *MetaCommand) Run(args []string) int {
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

	doc, err := client.DocumentMeta(context.Background(), tdoc.DocumentParams{ID: id, User: c.flagUser})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting document metadata: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, doc); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type MetaUpdateCommand struct {
	*base.Command

	client   base.ClientFlags
	flagMeta string
	flagUser string
}

func (c *MetaUpdateCommand) Synopsis() string {
	return "Replace the metadata of a document"
}

func (c *MetaUpdateCommand) Help() string {
	return `Usage: tdoc meta-update -meta=<json> [options] <id>

  Replace the metadata of the document with the given id and print the
  updated document.` +
		c.Flags().Help()
}

func (c *MetaUpdateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("meta-update", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagMeta, "meta", "", "(Required) Metadata as a JSON object")
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	return f
}

func (c *MetaUpdateCommand) Run(args []string) int {
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
	meta, err := base.JSONObject("meta", c.flagMeta)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	doc, err := client.MetaUpdate(context.Background(), tdoc.MetaUpdateParams{
		ID:   id,
		Meta: meta,
		User: c.flagUser,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error updating document metadata: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, doc); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
