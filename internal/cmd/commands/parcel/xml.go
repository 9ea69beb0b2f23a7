package parcel

import (
	"context"
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

type XMLCommand struct {
	*base.Command

	client     base.ClientFlags
	flagOutput string
	flagUser   string
}

func (c *XMLCommand) Synopsis() string {
	return "Print the XML description of a parcel"
}

func (c *XMLCommand) Help() string {
	return `Usage: tdoc parcel xml [options] <parcel>

  Print the XML description of a parcel, or write it to a file with -o.
  Signed parcels are unwrapped.` +
		c.Flags().Help()
}

func (c *XMLCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("parcel xml", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagOutput, "o", "", "Output file, standard output when empty")
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	return f
}

func (c *XMLCommand) Run(args []string) int {
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

	xml, err := client.ParcelXML(context.Background(), tdoc.ParcelXMLParams{
		ID:      id,
		User:    c.flagUser,
		Company: c.client.Company,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting parcel XML: %v", err))
		return 1
	}

	if c.flagOutput == "" {
		c.UI.Output(xml)
		return 0
	}
	if err := afero.WriteFile(c.Fs, c.flagOutput, []byte(xml), 0o644); err != nil {
		c.UI.Error(fmt.Sprintf("error writing %s: %v", c.flagOutput, err))
		return 1
	}
	c.UI.Info(fmt.Sprintf("Wrote parcel %s to %s", id, c.flagOutput))
	return 0
}
