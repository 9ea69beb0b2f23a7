package parcel

import (
	"context"
	"flag"
	"fmt"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

type CreateCommand struct {
	*base.Command

	client       base.ClientFlags
	flagDocType  string
	flagFilename string
	flagUser     string
}

func (c *CreateCommand) Synopsis() string {
	return "Create a parcel"
}

func (c *CreateCommand) Help() string {
	return `Usage: tdoc parcel create -company=<company> -doctype=<type> -filename=<name>

  Create a parcel and print it.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("parcel create", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagDocType, "doctype", "", "(Required) Document type of the parcel")
	f.StringVar(&c.flagFilename, "filename", "", "(Required) File name of the parcel")
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	p, err := client.ParcelCreate(context.Background(), tdoc.ParcelCreateParams{
		Company:  c.client.Company,
		DocType:  c.flagDocType,
		Filename: c.flagFilename,
		User:     c.flagUser,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating parcel: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, p); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type CloseCommand struct {
	*base.Command

	client    base.ClientFlags
	flagUser  string
	flagExtra string
}

func (c *CloseCommand) Synopsis() string {
	return "Close a parcel"
}

func (c *CloseCommand) Help() string {
	return `Usage: tdoc parcel close [options] <parcel>

  Close a parcel once all its documents are uploaded.` +
		c.Flags().Help()
}

func (c *CloseCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("parcel close", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	f.StringVar(&c.flagExtra, "extra", "", "Extra information stored with the parcel")
	return f
}

func (c *CloseCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	id, err := parcelID(flags.Args())
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	p, err := client.ParcelClose(context.Background(), tdoc.ParcelCloseParams{
		ID:    id,
		User:  c.flagUser,
		Extra: c.flagExtra,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error closing parcel: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, p); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type DeleteCommand struct {
	*base.Command

	client    base.ClientFlags
	flagUser  string
	flagError string
	flagExtra string
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a parcel"
}

func (c *DeleteCommand) Help() string {
	return `Usage: tdoc parcel delete [options] <parcel>

  Discard a parcel and the documents uploaded into it.` +
		c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("parcel delete", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	f.StringVar(&c.flagError, "error", "", "Reason the parcel is discarded")
	f.StringVar(&c.flagExtra, "extra", "", "Extra information stored with the parcel")
	return f
}

func (c *DeleteCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	id, err := parcelID(flags.Args())
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	p, err := client.ParcelDelete(context.Background(), tdoc.ParcelDeleteParams{
		ID:    id,
		User:  c.flagUser,
		Error: c.flagError,
		Extra: c.flagExtra,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error deleting parcel: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, p); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

func parcelID(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("expected one parcel id, got %d arguments", len(args))
	}
	return args[0], nil
}
