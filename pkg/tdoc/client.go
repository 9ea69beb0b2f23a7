package tdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

// Error is the error returned for transport and service failures.
type Error = rest.Error

var (
	// ErrInvalidParams is returned when parameters fail validation. No
	// request is made.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrUnexpectedResponse is returned when a response lacks the expected
	// shape.
	ErrUnexpectedResponse = rest.ErrUnexpectedResponse

	// ErrNotUnique is returned by SearchOne when the search does not match
	// exactly one document.
	ErrNotUnique = errors.New("expected exactly one document")
)

// Client is a tDoc client.
type Client struct {
	exec   *rest.Executor
	fs     afero.Fs
	logger hclog.Logger
}

// NewClient creates a client. Zero values in cfg are replaced by the
// defaults of DefaultConfig.
func NewClient(cfg *Config) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = defaults.TLSVerify
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = defaults.MaxConnsPerHost
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tdoc config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("tdoc")

	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = cfg.NewHTTPClient()
	}

	exec := rest.NewExecutor(rest.Options{
		Credentials: rest.Credentials{
			Address:  cfg.Address,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Login: rest.LoginOptions{
			Company:  cfg.Company,
			VerifyIP: cfg.VerifyIP,
		},
		HTTPClient: doer,
		Logger:     logger,
	})

	return &Client{
		exec:   exec,
		fs:     fs,
		logger: logger,
	}, nil
}

// Address returns the normalized service address.
func (c *Client) Address() string {
	return c.exec.Address()
}

// Login obtains a token explicitly. Calls log in lazily when needed, so
// this is only useful to check credentials up front.
func (c *Client) Login(ctx context.Context) (string, error) {
	return c.exec.Session().Login(ctx)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidParams, err)
}
