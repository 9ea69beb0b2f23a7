package tdoc

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/andxor/tdoc/pkg/tdoc/rest"
)

// Config contains configuration for a tDoc client.
type Config struct {
	// Address is the base URL of the tDoc instance.
	// Example: "https://tdoc.example.com/"
	Address string `json:"address"`

	Username string `json:"username"`
	Password string `json:"-"`

	// Company scopes the token requested at login. Optional.
	Company string `json:"company,omitempty"`

	// VerifyIP asks the service to bind the token to the client address.
	VerifyIP bool `json:"verifyIp,omitempty"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs
	TLSVerify *bool `json:"tlsVerify,omitempty"`

	// Timeout for a single request.
	// Default: 60 seconds
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxConnsPerHost bounds the simultaneous connections to the service.
	// Default: 5
	MaxConnsPerHost int `json:"maxConnsPerHost,omitempty"`

	// HTTPClient overrides the client built by NewHTTPClient.
	HTTPClient rest.Doer `json:"-"`

	// Logger defaults to a null logger.
	Logger hclog.Logger `json:"-"`

	// Fs is used to read files uploaded by path. Defaults to the OS file
	// system.
	Fs afero.Fs `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify:       &tlsVerify,
		Timeout:         60 * time.Second,
		MaxConnsPerHost: 5,
	}
}

// Validate checks if the configuration is valid. All problems are reported
// at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Address == "" {
		result = multierror.Append(result, errors.New("address is required"))
	} else if u, err := url.Parse(c.Address); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid address: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		result = multierror.Append(result,
			fmt.Errorf("address must use http or https scheme, got: %q", u.Scheme))
	}

	if c.Username == "" {
		result = multierror.Append(result, errors.New("username is required"))
	}

	if c.Timeout < 0 {
		result = multierror.Append(result,
			fmt.Errorf("timeout must be non-negative, got: %v", c.Timeout))
	}

	if c.MaxConnsPerHost < 0 {
		result = multierror.Append(result,
			fmt.Errorf("max_conns_per_host must be non-negative, got: %d", c.MaxConnsPerHost))
	}

	return result.ErrorOrNil()
}

// NewHTTPClient creates the pooled HTTP client shared by all calls of one
// Client.
func (c *Config) NewHTTPClient() *http.Client {
	maxConns := c.MaxConnsPerHost
	if maxConns == 0 {
		maxConns = 5
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxConnsPerHost:     maxConns,
		MaxIdleConns:        maxConns,
		MaxIdleConnsPerHost: maxConns,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
