package documents

import (
	"context"
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

type DownloadCommand struct {
	*base.Command

	client     base.ClientFlags
	flagOutput string
	flagUser   string
}

func (c *DownloadCommand) Synopsis() string {
	return "Download the content of a document"
}

func (c *DownloadCommand) Help() string {
	return `Usage: tdoc download -o=<file> [options] <id>

  Download the content of a document. The content is verified against the
  digest declared by tDoc before it is written.` +
		c.Flags().Help()
}

func (c *DownloadCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("download", flag.ContinueOnError))
	c.client.Register(f)
	f.StringVar(&c.flagOutput, "o", "", "(Required) Output file")
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	return f
}

func (c *DownloadCommand) Run(args []string) int {
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
	if c.flagOutput == "" {
		c.UI.Error("o flag is required")
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	data, err := client.Document(context.Background(), tdoc.DocumentParams{ID: id, User: c.flagUser})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error downloading document: %v", err))
		return 1
	}

	if err := afero.WriteFile(c.Fs, c.flagOutput, data, 0o644); err != nil {
		c.UI.Error(fmt.Sprintf("error writing %s: %v", c.flagOutput, err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("Wrote %d bytes to %s", len(data), c.flagOutput))
	return 0
}
