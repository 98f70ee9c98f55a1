package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/inkwell/internal/server"
	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "INKWELL"

// Ledger drivers.
const (
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Engine configuration
	LedgerDriver      string
	LedgerPath        string
	CatalogDir        string
	RemoteURL         string
	RemoteConcurrency int
	RemoteAuth        string // bearer, header:<Name> or query:<param>
	RemoteAPIKey      string
	RefreshTimeout    time.Duration
	RefreshInterval   time.Duration
	FreshnessWindow   time.Duration
	Premium           bool

	// HTTP API configuration
	Server server.Config

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (INKWELL_LEDGER_DRIVER, ...)
// 3. .env files
// 4. Config file (--config or ~/.inkwell.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	loadEnvFiles()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".inkwell")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist; the default locations are optional.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	cfg := &Config{
		ConfigFile: v.ConfigFileUsed(),
		Format:     v.GetString("output"),

		LedgerDriver:      strings.ToLower(v.GetString("ledger.driver")),
		LedgerPath:        v.GetString("ledger.path"),
		CatalogDir:        v.GetString("catalog.dir"),
		RemoteURL:         v.GetString("remote.url"),
		RemoteConcurrency: v.GetInt("remote.concurrency"),
		RemoteAuth:        v.GetString("remote.auth"),
		RemoteAPIKey:      v.GetString("remote.api_key"),
		RefreshTimeout:    v.GetDuration("refresh.timeout"),
		RefreshInterval:   v.GetDuration("refresh.interval"),
		FreshnessWindow:   v.GetDuration("refresh.freshness"),
		Premium:           v.GetBool("premium"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),
	}

	cfg.Server = server.DefaultConfig()
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.APIKey = v.GetString("server.api_key")
	cfg.Server.RateLimit = v.GetInt("server.rate_limit")
	if origins := v.GetStringSlice("server.cors_origins"); len(origins) > 0 {
		cfg.Server.CORSEnabled = true
		cfg.Server.CORSOrigins = origins
	}

	if cfg.LedgerPath == "" {
		cfg.LedgerPath = defaultLedgerPath(cfg.LedgerDriver)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.driver", DriverYAML)
	v.SetDefault("remote.url", constants.LorcastBaseURL)
	v.SetDefault("remote.concurrency", constants.DefaultRemoteConcurrency)
	v.SetDefault("remote.auth", "bearer")
	v.SetDefault("refresh.timeout", constants.DefaultRefreshTimeout)
	v.SetDefault("refresh.interval", constants.DefaultRefreshInterval)
	v.SetDefault("refresh.freshness", constants.DefaultFreshnessWindow)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", constants.DefaultServerPort)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.LedgerDriver {
	case DriverYAML, DriverSQLite:
	default:
		return errors.NewValidationError("ledger.driver", c.LedgerDriver, "must be yaml or sqlite")
	}
	if c.RemoteConcurrency < 1 {
		return errors.NewValidationError("remote.concurrency", c.RemoteConcurrency, "must be at least 1")
	}
	if c.RefreshInterval < constants.MinRefreshInterval {
		return errors.NewValidationError("refresh.interval", c.RefreshInterval,
			"must be at least "+constants.MinRefreshInterval.String())
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Flags take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// defaultLedgerPath places the ledger in ~/.inkwell, or the working
// directory when the home directory is unknown.
func defaultLedgerPath(driver string) string {
	name := constants.DefaultLedgerFile
	if driver == DriverSQLite {
		name = constants.DefaultLedgerDB
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, constants.DefaultDataDir, name)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
