// Package config resolves mapty's runtime settings from flags, environment,
// an optional .env file and an optional config file, in that precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/workout"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. MAPTY_MAP_ZOOM.
const EnvPrefix = "MAPTY"

const (
	FormatText = "text"
	FormatHTML = "html"
)

const (
	DefaultZoom        = 13
	DefaultAttribution = "© OpenStreetMap contributors"
	DefaultMaxSizeMB   = 10
	DefaultMaxBackups  = 3
	DefaultMaxAgeDays  = 28
)

// Config captures runtime configuration values.
type Config struct {
	// Location is the position reported by the geolocation source; nil when
	// none is configured, which makes geolocation fail.
	Location     *workout.Coordinates
	Zoom         int
	Attribution  string
	Log          LogConfig
	ScriptPath   string // headless replay when set
	OutputFormat string // text or html, headless mode only
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ErrHelp is returned by Load when --help was requested.
var ErrHelp = pflag.ErrHelp

// NewFlagSet declares the command-line flags.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config", "", "config file (default ~/.mapty/config.toml if present)")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flags.Float64("lat", 0, "latitude reported as the current position")
	flags.Float64("lng", 0, "longitude reported as the current position")
	flags.Int("zoom", DefaultZoom, "initial map zoom level")
	flags.String("log-file", "", "log file (default ~/.mapty/mapty.log)")
	flags.String("script", "", "replay a session script (toml) without the terminal UI")
	flags.String("format", FormatText, "headless output format: text or html")
	return flags
}

var flagKeys = map[string]string{
	"lat":      "location.latitude",
	"lng":      "location.longitude",
	"zoom":     "map.zoom",
	"log-file": "log.file",
	"script":   "script",
	"format":   "output.format",
}

// Load parses args and resolves the configuration.
func Load(args []string, usage io.Writer) (Config, error) {
	flags := NewFlagSet("mapty")
	if usage != nil {
		flags.SetOutput(usage)
	}
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	envFile, _ := flags.GetString("env-file")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	configFile, _ := flags.GetString("config")
	if err := readConfigFile(v, configFile); err != nil {
		return Config{}, err
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("map.zoom", DefaultZoom)
	v.SetDefault("map.attribution", DefaultAttribution)
	v.SetDefault("log.file", defaultPath("mapty.log"))
	v.SetDefault("log.max_size_mb", DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", DefaultMaxBackups)
	v.SetDefault("log.max_age_days", DefaultMaxAgeDays)
	v.SetDefault("script", "")
	v.SetDefault("output.format", FormatText)
}

// readConfigFile reads an explicit file, which must exist, or the default
// file when it exists.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		path = defaultPath("config.toml")
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Zoom:        geo.ClampZoom(v.GetInt("map.zoom")),
		Attribution: v.GetString("map.attribution"),
		Log: LogConfig{
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		ScriptPath:   v.GetString("script"),
		OutputFormat: strings.ToLower(v.GetString("output.format")),
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaultPath("mapty.log")
	}

	if v.IsSet("location.latitude") && v.IsSet("location.longitude") {
		pos := workout.Coordinates{
			Lat: v.GetFloat64("location.latitude"),
			Lng: v.GetFloat64("location.longitude"),
		}
		if err := geo.Validate(pos); err != nil {
			return Config{}, fmt.Errorf("location: %w", err)
		}
		cfg.Location = &pos
	}

	switch cfg.OutputFormat {
	case FormatText, FormatHTML:
	default:
		return Config{}, fmt.Errorf("output format %q: must be %s or %s", cfg.OutputFormat, FormatText, FormatHTML)
	}
	return cfg, nil
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".mapty", name)
}
