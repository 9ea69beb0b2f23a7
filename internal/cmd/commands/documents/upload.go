package documents

import (
	"context"
	"flag"
	"fmt"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/pkg/tdoc"
)

// documentFlags are the flags shared by upload and update.
type documentFlags struct {
	file     string
	mimeType string
	user     string
	period   int
	pages    int
	meta     string
	alias    string
	pin      string
	ready    bool
}

func (d *documentFlags) register(f *base.FlagSet, readyDefault bool) {
	f.StringVar(&d.file, "file", "", "Path of the content to upload")
	f.StringVar(&d.mimeType, "mimetype", "", "MIME type of the content")
	f.StringVar(&d.user, "user", "", "Act on behalf of this user")
	f.IntVar(&d.period, "period", 0, "Period (year) of the document")
	f.IntVar(&d.pages, "pages", 0, "Number of pages")
	f.StringVar(&d.meta, "meta", "", "Metadata as a JSON object")
	f.StringVar(&d.alias, "alias", "", "Alias for anonymous access, requires -pin")
	f.StringVar(&d.pin, "pin", "", "PIN for anonymous access, requires -alias")
	f.BoolVar(&d.ready, "ready", readyDefault, "Mark the document as complete")
}

// fields converts the flags. Ready is only sent when it was given
// explicitly or defaults to true.
func (d *documentFlags) fields(f *base.FlagSet) (tdoc.DocumentFields, error) {
	meta, err := base.JSONObject("meta", d.meta)
	if err != nil {
		return tdoc.DocumentFields{}, err
	}

	fields := tdoc.DocumentFields{
		MimeType: d.mimeType,
		User:     d.user,
		Period:   d.period,
		Pages:    d.pages,
		Meta:     meta,
		Alias:    d.alias,
		Pin:      d.pin,
		File:     d.file,
	}

	set := d.ready
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == "ready" {
			set = true
		}
	})
	if set {
		fields.Ready = tdoc.Bool(d.ready)
	}
	return fields, nil
}

type UploadCommand struct {
	*base.Command

	client        base.ClientFlags
	doc           documentFlags
	flagDocType   string
	flagParcel    string
	flagOverwrite bool
}

func (c *UploadCommand) Synopsis() string {
	return "Upload a new document"
}

func (c *UploadCommand) Help() string {
	return `Usage: tdoc upload -doctype=<type> -period=<year> [options]

  Upload a new document and print its metadata. Documents are uploaded as
  ready unless -ready=false is given, in which case -meta and -file may be
  sent later with "tdoc update".

  Example:

    $ tdoc upload -doctype=Invoice -period=2023 -file=invoice.pdf \
        -mimetype=application/pdf -meta='{"Numero documento": "123"}'` +
		c.Flags().Help()
}

func (c *UploadCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("upload", flag.ContinueOnError))
	c.client.Register(f)
	c.doc.register(f, true)
	f.StringVar(&c.flagDocType, "doctype", "", "(Required) Document type")
	f.StringVar(&c.flagParcel, "parcel", "", "Parcel the document belongs to")
	f.BoolVar(&c.flagOverwrite, "overwrite", false, "Overwrite a document with the same metadata")
	return f
}

func (c *UploadCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	fields, err := c.doc.fields(flags)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	doc, err := client.Upload(context.Background(), tdoc.UploadParams{
		DocType:        c.flagDocType,
		Parcel:         c.flagParcel,
		Overwrite:      c.flagOverwrite,
		DocumentFields: fields,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error uploading document: %v", err))
		return 1
	}
	if doc.Warning != nil {
		c.UI.Warn("Warning: " + doc.Warning.Message)
	}

	if err := c.Output(c.client.Format, doc); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

type UpdateCommand struct {
	*base.Command

	client base.ClientFlags
	doc    documentFlags
}

func (c *UpdateCommand) Synopsis() string {
	return "Update the content or metadata of a document"
}

func (c *UpdateCommand) Help() string {
	return `Usage: tdoc update [options] <id>

  Update an existing document and print its metadata.` +
		c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("update", flag.ContinueOnError))
	c.client.Register(f)
	c.doc.register(f, false)
	return f
}

func (c *UpdateCommand) Run(args []string) int {
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
	fields, err := c.doc.fields(flags)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client(&c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating client: %v", err))
		return 1
	}

	doc, err := client.Update(context.Background(), tdoc.UpdateParams{ID: id, DocumentFields: fields})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error updating document: %v", err))
		return 1
	}
	if doc.Warning != nil {
		c.UI.Warn("Warning: " + doc.Warning.Message)
	}

	if err := c.Output(c.client.Format, doc); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
