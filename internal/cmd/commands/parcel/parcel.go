package parcel

import (
	"github.com/mitchellh/cli"

	"github.com/andxor/tdoc/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage parcels"
}

func (c *Command) Help() string {
	return `Usage: tdoc parcel <subcommand> [options] [args]

  This command groups subcommands for parcels, batches of documents with
  their own lifecycle: a parcel is created, documents are uploaded into it,
  and it is then closed or deleted.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
