// Package config loads the tdoc CLI configuration.
//
// Values come from an optional HCL file, then from the environment (a .env
// file in the working directory is loaded first). Environment variables
// override the file.
//
// Example configuration (HCL):
//
//	address    = "https://tdoc.example.com/"
//	username   = "user"
//	company    = "ACME"
//	timeout    = "30s"
//	tls_verify = true
//
// The password is best kept in TDOC_PASSWORD.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"

	"github.com/andxor/tdoc/pkg/tdoc"
)

// Config is the CLI configuration.
type Config struct {
	Address  string `hcl:"address,optional" env:"TDOC_ADDRESS"`
	Username string `hcl:"username,optional" env:"TDOC_USERNAME"`
	Password string `hcl:"password,optional" env:"TDOC_PASSWORD"`
	Company  string `hcl:"company,optional" env:"TDOC_COMPANY"`
	VerifyIP bool   `hcl:"verify_ip,optional" env:"TDOC_VERIFY_IP"`

	TLSVerify       *bool  `hcl:"tls_verify,optional" env:"TDOC_TLS_VERIFY"`
	Timeout         string `hcl:"timeout,optional" env:"TDOC_TIMEOUT"`
	MaxConnsPerHost int    `hcl:"max_conns_per_host,optional" env:"TDOC_MAX_CONNS_PER_HOST"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `hcl:"log_level,optional" env:"TDOC_LOG_LEVEL"`
}

// Load reads the configuration file at path, if any, and applies
// environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("configuration file not found: %w", err)
		}
		if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Address == "" {
		result = multierror.Append(result, errors.New("address is required"))
	}
	if c.Username == "" {
		result = multierror.Append(result, errors.New("username is required"))
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid timeout: %w", err))
		}
	}
	if c.LogLevel != "" && hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("invalid log_level: %q", c.LogLevel))
	}

	return result.ErrorOrNil()
}

// TDoc returns the client configuration.
func (c *Config) TDoc() (*tdoc.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := tdoc.DefaultConfig()
	cfg.Address = c.Address
	cfg.Username = c.Username
	cfg.Password = c.Password
	cfg.Company = c.Company
	cfg.VerifyIP = c.VerifyIP
	if c.TLSVerify != nil {
		cfg.TLSVerify = c.TLSVerify
	}
	if c.Timeout != "" {
		cfg.Timeout, _ = time.ParseDuration(c.Timeout)
	}
	if c.MaxConnsPerHost != 0 {
		cfg.MaxConnsPerHost = c.MaxConnsPerHost
	}
	return cfg, nil
}
