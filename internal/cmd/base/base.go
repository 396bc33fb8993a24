package base

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/geniectl/internal/config"
	"github.com/hashicorp-forge/geniectl/pkg/genie"
	"github.com/hashicorp-forge/geniectl/pkg/spacesync"
)

// Command is embedded by every geniectl command.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger

	// Fs is used for config files and space import/export.
	Fs afero.Fs

	// LookupEnv reads the environment. Tests replace it.
	LookupEnv config.LookupEnvFunc
}

// New returns a Command using the OS filesystem and environment.
func New(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		UI:        ui,
		Log:       log,
		Fs:        afero.NewOsFs(),
		LookupEnv: os.LookupEnv,
	}
}

// Context returns a context cancelled on interrupt.
func (c *Command) Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// Fail reports an error and returns exit code 1.
func (c *Command) Fail(format string, args ...interface{}) int {
	c.UI.Error(fmt.Sprintf(format, args...))
	return 1
}

// ConnectionFlags select the workspace, credentials and write behavior.
// Empty values fall back to the environment, then the config file.
type ConnectionFlags struct {
	ConfigPath      string
	Host            string
	Token           string
	Profile         string
	WarehouseID     string
	Catalog         string
	Schema          string
	LogLevel        string
	Verify          bool
	ConflictRetries int
}

// Register adds the connection flags to f.
func (cf *ConnectionFlags) Register(f *FlagSet) {
	f.StringVar(&cf.ConfigPath, "config", "",
		"Path to an HCL (.hcl) or JSON (.json) config file")
	f.StringVar(&cf.Host, "host", "",
		fmt.Sprintf("[%s] Workspace URL", config.EnvHost))
	f.StringVar(&cf.Token, "token", "",
		fmt.Sprintf("[%s] Personal access token", config.EnvToken))
	f.StringVar(&cf.Profile, "profile", "",
		fmt.Sprintf("[%s] Databricks CLI profile", config.EnvProfile))
	f.StringVar(&cf.WarehouseID, "warehouse-id", "",
		fmt.Sprintf("[%s] SQL warehouse for statements and new spaces", config.EnvWarehouseID))
	f.StringVar(&cf.Catalog, "catalog", "",
		fmt.Sprintf("[%s] Catalog of the example objects", config.EnvCatalog))
	f.StringVar(&cf.Schema, "schema", "",
		fmt.Sprintf("[%s] Schema of the example objects", config.EnvSchema))
	f.StringVar(&cf.LogLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error)")
	f.BoolVar(&cf.Verify, "verify", false,
		"Re-export before writing and fail if the space changed")
	f.IntVar(&cf.ConflictRetries, "conflict-retries", 0,
		"Times to redo a write that hit a concurrent change (requires -verify)")
}

// Session is a connected workspace.
type Session struct {
	Config *config.Config
	Client *genie.Client
	Syncer *spacesync.Synchronizer
}

// LoadConfig resolves configuration with precedence flags, environment,
// file, defaults.
func (c *Command) LoadConfig(cf *ConnectionFlags) (*config.Config, error) {
	cfg := config.Default()
	if cf.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(c.Fs, cf.ConfigPath, c.LookupEnv); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(c.LookupEnv); err != nil {
		return nil, err
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Host, cf.Host)
	set(&cfg.Token, cf.Token)
	set(&cfg.Profile, cf.Profile)
	set(&cfg.WarehouseID, cf.WarehouseID)
	set(&cfg.Catalog, cf.Catalog)
	set(&cfg.Schema, cf.Schema)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Connect builds the client and synchronizer for the configured workspace.
func (c *Command) Connect(ctx context.Context, cf *ConnectionFlags) (*Session, error) {
	if cf.LogLevel != "" {
		level := hclog.LevelFromString(cf.LogLevel)
		if level == hclog.NoLevel {
			return nil, fmt.Errorf("unknown log level %q", cf.LogLevel)
		}
		c.Log.SetLevel(level)
	}
	if cf.ConflictRetries < 0 {
		return nil, fmt.Errorf("conflict-retries must not be negative")
	}

	cfg, err := c.LoadConfig(cf)
	if err != nil {
		return nil, err
	}

	clientCfg, err := cfg.ClientConfig(ctx)
	if err != nil {
		return nil, err
	}
	client, err := genie.NewClient(clientCfg, c.Log)
	if err != nil {
		return nil, err
	}
	c.Log.Debug("connected", "host", client.Host(), "warehouse_id", client.WarehouseID())

	return &Session{
		Config: cfg,
		Client: client,
		Syncer: spacesync.New(client, c.Log, spacesync.Options{
			VerifyBeforeWrite: cf.Verify,
			ConflictRetries:   cf.ConflictRetries,
		}),
	}, nil
}

// Confirm asks a yes/no question. Only "y" and "yes" confirm.
func (c *Command) Confirm(question string) (bool, error) {
	answer, err := c.UI.Ask(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
