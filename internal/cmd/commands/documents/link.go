package documents

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/browser"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

// openURL is replaced in tests.
var openURL = browser.OpenURL

type LinkCommand struct {
	*base.Command

	client   base.ClientFlags
	flagOpen bool
	flagUser string
}

func (c *LinkCommand) Synopsis() string {
	return "Print a shareable link to a document"
}

func (c *LinkCommand) Help() string {
	return `Usage: tdoc link [options] <id>

  Print a shareable link to a document, or open it in the default browser
  with -open.` +
		c.Flags().Help()
}

func (c *LinkCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("link", flag.ContinueOnError))
	c.client.Register(f)
	f.BoolVar(&c.flagOpen, "open", false, "Open the link in the default browser")
	f.StringVar(&c.flagUser, "user", "", "Act on behalf of this user")
	return f
}

func (c *LinkCommand) Run(args []string) int {
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

	link, err := client.DocumentLink(context.Background(), tdoc.DocumentParams{ID: id, User: c.flagUser})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting document link: %v", err))
		return 1
	}

	if c.flagOpen {
		url, ok := linkURL(link)
		if !ok {
			c.UI.Error(fmt.Sprintf("no URL in link response: %v", link))
			return 1
		}
		if err := openURL(url); err != nil {
			c.UI.Error(fmt.Sprintf("error opening browser: %v", err))
			return 1
		}
		c.UI.Info("Opened " + url)
		return 0
	}

	if err := c.Output(c.client.Format, link); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// linkURL extracts the URL from a link response, which is either the URL
// itself or an object carrying it.
func linkURL(v any) (string, bool) {
	switch l := v.(type) {
	case string:
		return l, l != ""
	case map[string]any:
		for _, k := range []string{"url", "link"} {
			if s, ok := l[k].(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
