// Package config resolves the immutable startup configuration for notifyy.
//
// Everything path-related (web root, preference file, log directory) is derived
// once here and handed to component constructors by value. Components never
// look at os.Executable or the working directory themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName keys the auto-start entry and titles every window and notification.
	AppName = "Notifyy"

	// DefaultPort is the first port tried by the static file server.
	DefaultPort = 8000

	webDirName          = "web"
	preferencesFileName = "notifyy_config.json"
	configFileName      = "notifyy"
	envPrefix           = "NOTIFYY"
)

// Flag names shared between RegisterFlags and Load.
const (
	FlagPort        = "port"
	FlagWebDir      = "web-dir"
	FlagPreferences = "preferences"
	FlagLogLevel    = "log-level"
	FlagLogDir      = "log-dir"
	FlagConsole     = "console"
	FlagShow        = "show"
)

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Dir        string `mapstructure:"dir" validate:"required"`
	Console    bool   `mapstructure:"console"`
	MaxSize    int    `mapstructure:"max-size" validate:"gte=0"` // MB
	MaxBackups int    `mapstructure:"max-backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max-age" validate:"gte=0"` // days
	Compress   bool   `mapstructure:"compress"`
}

// Config is the resolved startup configuration.
type Config struct {
	AppName         string    `mapstructure:"app-name" validate:"required"`
	AppDir          string    `mapstructure:"app-dir" validate:"required"`
	WebDir          string    `mapstructure:"web-dir" validate:"required"`
	PreferencesPath string    `mapstructure:"preferences" validate:"required"`
	Port            int       `mapstructure:"port" validate:"min=1,max=65535"`
	ShowOnStart     bool      `mapstructure:"show"`
	Logging         LogConfig `mapstructure:"logging"`

	// Executable is the resolved path of the running binary. It is not read from
	// any configuration source.
	Executable string `mapstructure:"-"`
}

// RegisterFlags adds the configuration flags to a cobra/pflag flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int(FlagPort, DefaultPort, "preferred HTTP port; the next free port is used if taken")
	fs.String(FlagWebDir, "", "directory of static web assets (default: <app dir>/web)")
	fs.String(FlagPreferences, "", "preference file (default: <app dir>/notifyy_config.json)")
	fs.String(FlagLogLevel, "info", "log level: debug, info, warn, error")
	fs.String(FlagLogDir, "", "log directory (default: per-OS user log directory)")
	fs.Bool(FlagConsole, false, "also write logs to stderr")
	fs.Bool(FlagShow, false, "show the control panel at startup")
}

// Load resolves configuration from defaults, an optional YAML file, NOTIFYY_*
// environment variables and command-line flags, in increasing precedence.
// configFile may be empty, in which case notifyy.yaml beside the executable is
// used when present. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	exe, appDir, err := resolveAppDir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve application directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, appDir)
	setupViper(v, configFile, appDir)

	if err := bindFlags(v, flags); err != nil {
		return Config{}, err
	}

	if err := readConfigFile(v); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Executable = exe

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks struct-level constraints.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(cfg)
}

func setDefaults(v *viper.Viper, appDir string) {
	v.SetDefault("app-name", AppName)
	v.SetDefault("app-dir", appDir)
	v.SetDefault("web-dir", filepath.Join(appDir, webDirName))
	v.SetDefault("preferences", filepath.Join(appDir, preferencesFileName))
	v.SetDefault("port", DefaultPort)
	v.SetDefault("show", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.dir", DefaultLogDir())
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.max-size", 10)
	v.SetDefault("logging.max-backups", 3)
	v.SetDefault("logging.max-age", 28)
	v.SetDefault("logging.compress", true)
}

// setupViper configures environment variables and the config file search.
// Example: NOTIFYY_PORT=9000, NOTIFYY_LOGGING_LEVEL=debug
func setupViper(v *viper.Viper, configFile, appDir string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		return
	}
	v.AddConfigPath(appDir)
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	bindings := map[string]string{
		"port":            FlagPort,
		"web-dir":         FlagWebDir,
		"preferences":     FlagPreferences,
		"show":            FlagShow,
		"logging.level":   FlagLogLevel,
		"logging.dir":     FlagLogDir,
		"logging.console": FlagConsole,
	}
	for key, name := range bindings {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		// Empty string flags mean "use the default", so only bind when set.
		if f.Value.Type() == "string" && !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// readConfigFile reads the configuration file if it exists. A missing file is
// not an error.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.WebDir, err = filepath.Abs(c.WebDir); err != nil {
		return fmt.Errorf("invalid web dir: %w", err)
	}
	if c.PreferencesPath, err = filepath.Abs(c.PreferencesPath); err != nil {
		return fmt.Errorf("invalid preferences path: %w", err)
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// resolveAppDir returns the running executable and the directory that holds the
// web root and preference file. Binaries produced by `go run` live in a
// throwaway build directory, so those fall back to the working directory.
func resolveAppDir() (exe, dir string, err error) {
	exe, err = os.Executable()
	if err != nil {
		dir, err = os.Getwd()
		return "", dir, err
	}
	if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
		exe = resolved
	}

	dir = filepath.Dir(exe)
	if isGoRunBuild(dir) {
		dir, err = os.Getwd()
		return exe, dir, err
	}
	return exe, dir, nil
}

func isGoRunBuild(dir string) bool {
	tmp := filepath.Clean(os.TempDir())
	return strings.HasPrefix(filepath.Clean(dir), tmp) && strings.Contains(dir, "go-build")
}

// DefaultLogDir returns the standard log directory for the current OS.
// Falls back to a temporary directory when a platform path cannot be resolved.
func DefaultLogDir() string {
	fallback := filepath.Join(os.TempDir(), "notifyy", "logs")

	switch runtime.GOOS {
	case "darwin":
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, "Library", "Logs", AppName)
		}
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, AppName, "logs")
		}
	default:
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, ".notifyy", "logs")
		}
	}

	return fallback
}
