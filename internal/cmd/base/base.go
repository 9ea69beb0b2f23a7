package base

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/andxor/tdoc/internal/config"
	"github.com/andxor/tdoc/pkg/tdoc"
)

// Command is embedded by every tdoc command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// Fs is used for files read and written by commands.
	Fs afero.Fs

	// Configure, when set, adjusts the client configuration before the
	// client is built. Tests use it to inject an HTTP client.
	Configure func(*tdoc.Config)
}

// NewCommand returns a base command working on the OS file system.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
		Fs:  afero.NewOsFs(),
	}
}

// FlagSet is a wrapper around a flag set.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a wrapped flag set.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help returns the usage of the flags in the set.
func (f *FlagSet) Help() string {
	var out bytes.Buffer

	fmt.Fprint(&out, "\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&out, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&out, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&out, "\n    %s\n", fl.Usage)
	})

	return strings.TrimRight(out.String(), "\n")
}

// ClientFlags are the flags shared by commands that talk to tDoc.
type ClientFlags struct {
	Config   string
	Address  string
	Username string
	Company  string
	Format   string
	LogLevel string
}

// Register adds the shared flags to f.
func (cf *ClientFlags) Register(f *FlagSet) {
	f.StringVar(&cf.Config, "config", "", "Path to a tdoc HCL config file")
	f.StringVar(&cf.Address, "address", "", "tDoc address, overrides the config file and TDOC_ADDRESS")
	f.StringVar(&cf.Username, "username", "", "tDoc username, overrides the config file and TDOC_USERNAME")
	f.StringVar(&cf.Company, "company", "", "Company, overrides the config file and TDOC_COMPANY")
	f.StringVar(&cf.Format, "format", "json", "Output format: json or yaml")
	f.StringVar(&cf.LogLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
}

// Client builds a tDoc client from the config file, the environment and
// cf. On return cf.Company holds the resolved company.
func (c *Command) Client(cf *ClientFlags) (*tdoc.Client, error) {
	switch cf.Format {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("unsupported format %q", cf.Format)
	}

	cfg, err := config.Load(cf.Config)
	if err != nil {
		return nil, err
	}
	if cf.Address != "" {
		cfg.Address = cf.Address
	}
	if cf.Username != "" {
		cfg.Username = cf.Username
	}
	if cf.Company != "" {
		cfg.Company = cf.Company
	}
	cf.Company = cfg.Company
	if cf.LogLevel != "" {
		cfg.LogLevel = cf.LogLevel
	}

	tc, err := cfg.TDoc()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LogLevel != "" {
		c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	}
	tc.Logger = c.Log
	tc.Fs = c.Fs
	if c.Configure != nil {
		c.Configure(tc)
	}

	return tdoc.NewClient(tc)
}

// Output writes v to the UI in the requested format.
func (c *Command) Output(format string, v any) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case "yaml":
		b, err = yaml.Marshal(v)
	default:
		b, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}

	c.UI.Output(strings.TrimRight(string(b), "\n"))
	return nil
}

// DocumentID parses the single document id argument of a command.
func DocumentID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one document id, got %d arguments", len(args))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document id %q", args[0])
	}
	return id, nil
}

// JSONObject parses a JSON object flag value. An empty value yields nil.
func JSONObject(name, value string) (map[string]any, error) {
	if value == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(value), &m); err != nil {
		return nil, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return m, nil
}
