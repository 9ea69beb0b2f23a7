package documents

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

const dateLayout = "2006-01-02"

type SearchCommand struct {
	*base.Command

	client base.ClientFlags

	flagDocType   string
	flagMeta      string
	flagUser      string
	flagPeriod    int
	flagLimit     int
	flagComplete  bool
	flagSince     string
	flagUntil     string
	flagDateField string
}

func (c *SearchCommand) Synopsis() string {
	return "Search documents by metadata"
}

func (c *SearchCommand) Help() string {
	return `Usage: tdoc search -doctype=<type> [options]

  Search documents of a type and print their ids, newest first. With
  -complete the metadata of every document is printed instead.

  Example:

    $ tdoc search -doctype=Invoice -meta='{"Cliente": "ACME"}' -since="last month"` +
		c.Flags().Help()
}

func (c *SearchCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("search", flag.ContinueOnError))
	c.client.Register(f)
	c.register(f)
	f.BoolVar(&c.flagComplete, "complete", false, "Print document metadata instead of ids")
	f.IntVar(&c.flagLimit, "limit", 0, "Maximum number of results, 0 for the service default")
	return f
}

func (c *SearchCommand) register(f *base.FlagSet) {
	f.StringVar(&c.flagDocType, "doctype", "", "(Required) Document type")
	f.StringVar(&c.flagMeta, "meta", "", "Metadata query as a JSON object")
	f.StringVar(&c.flagUser, "user", "", "Search on behalf of this user")
	f.IntVar(&c.flagPeriod, "period", 0, "Period (year) of the documents")
	f.StringVar(&c.flagSince, "since", "", "Earliest document date, in any common format")
	f.StringVar(&c.flagUntil, "until", "", "Latest document date, in any common format")
	f.StringVar(&c.flagDateField, "date-field", "Data", "Metadata field matched by -since and -until")
}

// params builds the search parameters from the flags.
func (c *SearchCommand) params() (tdoc.SearchParams, error) {
	meta, err := base.JSONObject("meta", c.flagMeta)
	if err != nil {
		return tdoc.SearchParams{}, err
	}

	if c.flagSince != "" || c.flagUntil != "" {
		since, err := parseDate(c.flagSince, time.Time{})
		if err != nil {
			return tdoc.SearchParams{}, fmt.Errorf("invalid -since: %w", err)
		}
		until, err := parseDate(c.flagUntil, time.Now())
		if err != nil {
			return tdoc.SearchParams{}, fmt.Errorf("invalid -until: %w", err)
		}
		if meta == nil {
			meta = map[string]any{}
		}
		meta[c.flagDateField] = map[string]any{
			"$dateIns": []string{since.Format(dateLayout), until.Format(dateLayout)},
		}
	}

	return tdoc.SearchParams{
		DocType: c.flagDocType,
		Meta:    meta,
		User:    c.flagUser,
		Period:  c.flagPeriod,
		Limit:   c.flagLimit,
	}, nil
}

func parseDate(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return dateparse.ParseLocal(s)
}

func (c *SearchCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	p, err := c.params()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	ctx := context.Background()
	var out any
	if c.flagComplete {
		out, err = client.SearchDocuments(ctx, p)
	} else {
		out, err = client.Search(ctx, p)
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("error searching documents: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, out); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type SearchOneCommand struct {
	SearchCommand
}

func (c *SearchOneCommand) Synopsis() string {
	return "Print the single document matching a search"
}

func (c *SearchOneCommand) Help() string {
	return `Usage: tdoc search-one -doctype=<type> [options]

  Search documents of a type and print the metadata of the only match.
  Fails when no document or more than one document matches.` +
		c.Flags().Help()
}

func (c *SearchOneCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("search-one", flag.ContinueOnError))
	c.client.Register(f)
	c.register(f)
	return f
}

func (c *SearchOneCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	p, err := c.params()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	doc, err := client.SearchOne(context.Background(), p)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error searching document: %v", err))
		return 1
	}

	if err := c.Output(c.client.Format, doc); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
