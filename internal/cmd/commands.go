package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/andxor/tdoc/internal/cmd/base"
	"github.com/andxor/tdoc/internal/cmd/commands/catalog"
	"github.com/andxor/tdoc/internal/cmd/commands/documents"
	"github.com/andxor/tdoc/internal/cmd/commands/login"
	"github.com/andxor/tdoc/internal/cmd/commands/parcel"
	"github.com/andxor/tdoc/internal/cmd/commands/version"
)

// Commands is the mapping of all available tdoc commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"search": func() (cli.Command, error) {
			return &documents.SearchCommand{Command: b}, nil
		},
		"search-one": func() (cli.Command, error) {
			return &documents.SearchOneCommand{
				SearchCommand: documents.SearchCommand{Command: b},
			}, nil
		},
		"meta": func() (cli.Command, error) {
			return &documents.MetaCommand{Command: b}, nil
		},
		"meta-update": func() (cli.Command, error) {
			return &documents.MetaUpdateCommand{Command: b}, nil
		},
		"download": func() (cli.Command, error) {
			return &documents.DownloadCommand{Command: b}, nil
		},
		"upload": func() (cli.Command, error) {
			return &documents.UploadCommand{Command: b}, nil
		},
		"update": func() (cli.Command, error) {
			return &documents.UpdateCommand{Command: b}, nil
		},
		"link": func() (cli.Command, error) {
			return &documents.LinkCommand{Command: b}, nil
		},
		"delete": func() (cli.Command, error) {
			return &documents.DeleteCommand{Command: b}, nil
		},
		"parcel": func() (cli.Command, error) {
			return &parcel.Command{Command: b}, nil
		},
		"parcel create": func() (cli.Command, error) {
			return &parcel.CreateCommand{Command: b}, nil
		},
		"parcel close": func() (cli.Command, error) {
			return &parcel.CloseCommand{Command: b}, nil
		},
		"parcel delete": func() (cli.Command, error) {
			return &parcel.DeleteCommand{Command: b}, nil
		},
		"parcel xml": func() (cli.Command, error) {
			return &parcel.XMLCommand{Command: b}, nil
		},
		"companies": func() (cli.Command, error) {
			return &catalog.CompaniesCommand{Command: b}, nil
		},
		"doctypes": func() (cli.Command, error) {
			return &catalog.DocTypesCommand{Command: b}, nil
		},
		"doctype": func() (cli.Command, error) {
			return &catalog.DocTypeCommand{Command: b}, nil
		},
		"login": func() (cli.Command, error) {
			return &login.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
