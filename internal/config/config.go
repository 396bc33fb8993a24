// Package config loads geniectl configuration from an HCL file and the
// environment.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

const (
	// DefaultCatalog and DefaultSchema hold the example finance tables.
	DefaultCatalog = "waggoner"
	DefaultSchema  = "finance"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = "30s"

	// DefaultMaxRetries is the number of retries for idempotent requests.
	DefaultMaxRetries = 3
)

// Environment variables read by ApplyEnv.
const (
	EnvHost         = "DATABRICKS_HOST"
	EnvToken        = "DATABRICKS_TOKEN"
	EnvWarehouseID  = "DATABRICKS_WAREHOUSE_ID"
	EnvProfile      = "DATABRICKS_CONFIG_PROFILE"
	EnvClientID     = "DATABRICKS_CLIENT_ID"
	EnvClientSecret = "DATABRICKS_CLIENT_SECRET"
	EnvCatalog      = "GENIE_CATALOG"
	EnvSchema       = "GENIE_SCHEMA"
	EnvMaxRetries   = "GENIE_MAX_RETRIES"
)

// Config contains the geniectl configuration.
type Config struct {
	// Host is the workspace URL.
	Host string `hcl:"host,optional"`

	// Token is a personal access token.
	Token string `hcl:"token,optional"`

	// Profile is a Databricks CLI profile used when no token or OAuth
	// client is configured.
	Profile string `hcl:"profile,optional"`

	// WarehouseID is the SQL warehouse for statements and new spaces.
	WarehouseID string `hcl:"warehouse_id,optional"`

	// Catalog and Schema locate the example tables.
	Catalog string `hcl:"catalog,optional"`
	Schema  string `hcl:"schema,optional"`

	// Timeout is a duration string such as "30s".
	Timeout string `hcl:"timeout,optional"`

	// MaxRetries for idempotent requests. Nil means the default.
	MaxRetries *int `hcl:"max_retries,optional"`

	// OAuth configures machine-to-machine authentication.
	OAuth *OAuth `hcl:"oauth,block"`
}

// OAuth contains service principal client credentials.
type OAuth struct {
	ClientID     string `hcl:"client_id,optional"`
	ClientSecret string `hcl:"client_secret,optional"`
}

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// Default returns a Config with every default applied.
func Default() *Config {
	retries := DefaultMaxRetries
	return &Config{
		Catalog:    DefaultCatalog,
		Schema:     DefaultSchema,
		Timeout:    DefaultTimeout,
		MaxRetries: &retries,
	}
}

// envFunction returns the HCL env("NAME") function.
func envFunction(lookup LookupEnvFunc) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "name", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			v, _ := lookup(args[0].AsString())
			return cty.StringVal(v), nil
		},
	})
}

// Load reads an HCL config file, leaving unset fields at their defaults.
// The file name must end in .hcl, or .json for the JSON syntax.
func Load(fs afero.Fs, path string, lookup LookupEnvFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ctx := &hcl.EvalContext{
		Functions: map[string]function.Function{"env": envFunction(lookup)},
	}

	cfg := Default()
	if err := hclsimple.Decode(path, src, ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Catalog == "" {
		c.Catalog = d.Catalog
	}
	if c.Schema == "" {
		c.Schema = d.Schema
	}
	if c.Timeout == "" {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries == nil {
		c.MaxRetries = d.MaxRetries
	}
}

// ApplyEnv overrides file values with the environment. Empty variables are
// ignored.
func (c *Config) ApplyEnv(lookup LookupEnvFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Host, EnvHost)
	set(&c.Token, EnvToken)
	set(&c.WarehouseID, EnvWarehouseID)
	set(&c.Profile, EnvProfile)
	set(&c.Catalog, EnvCatalog)
	set(&c.Schema, EnvSchema)

	id, hasID := lookup(EnvClientID)
	secret, hasSecret := lookup(EnvClientSecret)
	if (hasID && id != "") || (hasSecret && secret != "") {
		if c.OAuth == nil {
			c.OAuth = &OAuth{}
		}
		set(&c.OAuth.ClientID, EnvClientID)
		set(&c.OAuth.ClientSecret, EnvClientSecret)
	}

	if v, ok := lookup(EnvMaxRetries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxRetries, err)
		}
		c.MaxRetries = &n
	}

	c.fillDefaults()
	return nil
}

// Validate checks field formats. Missing credentials are reported by
// ClientConfig instead, since a profile may supply them.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.By(duration)),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.Catalog, validation.Required),
		validation.Field(&c.Schema, validation.Required),
		validation.Field(&c.OAuth),
	)
}

func (o *OAuth) Validate() error {
	if o == nil {
		return nil
	}
	return validation.ValidateStruct(o,
		validation.Field(&o.ClientID, validation.Required),
		validation.Field(&o.ClientSecret, validation.Required),
	)
}

func duration(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

// TimeoutDuration returns the parsed timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// Qualify returns name inside the configured catalog and schema.
func (c *Config) Qualify(name string) string {
	return fmt.Sprintf("%s.%s.%s", c.Catalog, c.Schema, name)
}

// ClientConfig builds the Genie client config. Credentials are chosen in
// order: token, OAuth client credentials, CLI profile.
func (c *Config) ClientConfig(ctx context.Context) (*genie.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := genie.DefaultConfig()
	cfg.Host = c.Host
	cfg.WarehouseID = c.WarehouseID
	cfg.Timeout = c.TimeoutDuration()
	if c.MaxRetries != nil {
		cfg.MaxRetries = *c.MaxRetries
	}

	switch {
	case c.Token != "":
		cfg.Auth = genie.TokenAuth(c.Token)
	case c.OAuth != nil && c.OAuth.ClientID != "":
		if c.Host == "" {
			return nil, genie.NewError("configure", genie.ErrAuth, "OAuth requires a host")
		}
		cfg.Auth = genie.NewOAuthM2MAuth(ctx, c.Host, c.OAuth.ClientID, c.OAuth.ClientSecret)
	case c.Profile != "":
		auth, err := genie.NewProfileAuth(c.Profile, c.Host)
		if err != nil {
			return nil, err
		}
		if cfg.Host == "" {
			cfg.Host = auth.Host()
		}
		cfg.Auth = auth
	default:
		return nil, genie.NewError("configure", genie.ErrAuth,
			"no credentials: set %s, %s/%s or %s", EnvToken, EnvClientID, EnvClientSecret, EnvProfile)
	}

	if cfg.Host == "" {
		return nil, genie.NewError("configure", genie.ErrAuth, "no workspace host: set %s", EnvHost)
	}
	return cfg, nil
}
