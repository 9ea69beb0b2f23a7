package version

import (
	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: tdoc version

  Print the version of the tdoc CLI.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
