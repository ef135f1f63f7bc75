package app

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ashkam58/mathflix/pkg/constants"
	pkgerrors "github.com/ashkam58/mathflix/pkg/errors"
)

// envPrefix namespaces environment variables, e.g. MATHFLIX_STORE.
const envPrefix = "MATHFLIX"

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

	// Catalog configuration
	Store             string
	DataDir           string
	SnapshotKey       string
	Definitions       string
	ReconcileInterval time.Duration
	ReconcileCron     string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// DefaultDataDir returns the directory snapshots are stored under when
// none is configured.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, constants.AppName)
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables (MATHFLIX_*)
//  3. .env files
//  4. Config file (configFile, or ~/.mathflix.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store", constants.DefaultStore)
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("snapshot_key", constants.DefaultSnapshotKey)
	v.SetDefault("reconcile_interval", constants.DefaultReconcileInterval)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	// unprefixed names used by the logging package
	for key, env := range map[string]string{
		"log_level":  "LOG_LEVEL",
		"log_format": "LOG_FORMAT",
		"log_output": "LOG_OUTPUT",
	} {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, pkgerrors.WrapResource("bind", "env", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("." + constants.AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(xdg.Home)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, &pkgerrors.ConfigError{
				Component: "config file",
				Message:   "cannot read configuration",
				Err:       err,
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Store:             v.GetString("store"),
		DataDir:           v.GetString("data_dir"),
		SnapshotKey:       v.GetString("snapshot_key"),
		Definitions:       v.GetString("definitions"),
		ReconcileInterval: v.GetDuration("reconcile_interval"),
		ReconcileCron:     v.GetString("reconcile_cron"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

// Flags carries the global flag values parsed by cobra.
type Flags struct {
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string
	Store    string
	DataDir  string
}

// UpdateFromFlags applies parsed command flags. Flag values take
// precedence over config file and env vars.
func (c *Config) UpdateFromFlags(f Flags) {
	c.Verbose = c.Verbose || f.Verbose
	c.Quiet = c.Quiet || f.Quiet
	c.NoColor = c.NoColor || f.NoColor
	if f.Format != "" {
		c.Format = f.Format
	}
	switch {
	case f.LogLevel != "":
		c.LogLevel = f.LogLevel
	case f.Verbose || f.Quiet:
		// shortcuts on the command line beat a configured level
		c.LogLevel = ""
	}
	if f.Store != "" {
		c.Store = f.Store
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
}

// loadEnvFiles loads environment variables from .env files.
// godotenv never overrides variables already set, so .env.local wins.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
