package login

import (
	"context"
	"flag"
	"fmt"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

type Command struct {
	*base.Command

	client        base.ClientFlags
	flagShowToken bool
}

func (c *Command) Synopsis() string {
	return "Check credentials by logging in"
}

func (c *Command) Help() string {
	return `Usage: tdoc login [options]

  Log in to tDoc to check the configured credentials. Servers without token
  authentication report that basic authentication is used instead.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("login", flag.ContinueOnError))
	c.client.Register(f)
	f.BoolVar(&c.flagShowToken, "show-token", false, "Print the token")
	return f
}

func (c *Command) Run(args []string) int {
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

	token, err := client.Login(context.Background())
	if rest.IsNotFound(err) {
		c.UI.Warn("Token authentication is not available, basic authentication will be used")
		return 0
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("error logging in: %v", err))
		return 1
	}

	c.UI.Info("Login succeeded for " + client.Address())
	if c.flagShowToken {
		c.UI.Output(token)
	}
	return 0
}
