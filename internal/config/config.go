package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"gopkg.in/yaml.v3"
)

const envPrefix = "WGUARD_"

// Config holds all application configuration.
type Config struct {
	Interfaces      []string      `yaml:"interfaces"`
	InjectInterface string        `yaml:"inject_interface"`
	Addr            string        `yaml:"addr"`
	GRPCPort        int           `yaml:"grpc"`
	DBPath          string        `yaml:"db"`
	Debug           bool          `yaml:"debug"`
	AutoNuke        bool          `yaml:"auto_nuke"`
	DeauthInterval  time.Duration `yaml:"deauth_interval"`
	HistoryCapacity int           `yaml:"history"`
	EvictInterval   time.Duration `yaml:"evict"`
	Retention       time.Duration `yaml:"retention"`
	Latitude        *float64      `yaml:"lat"`
	Longitude       *float64      `yaml:"lng"`
	AuthUser        string        `yaml:"auth_user"`
	AuthHash        string        `yaml:"auth_hash"`
	SensorID        string        `yaml:"sensor_id"`

	// ConfigPath is the YAML file that was loaded, if any.
	ConfigPath string `yaml:"-"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Interfaces:      []string{"wlan0mon"},
		Addr:            ":8080",
		GRPCPort:        9000,
		DBPath:          defaultDBPath(),
		AutoNuke:        true,
		DeauthInterval:  4 * time.Millisecond,
		HistoryCapacity: 6,
		EvictInterval:   5 * time.Minute,
		Retention:       30 * time.Minute,
	}
}

// Load builds the configuration from defaults, the optional YAML file,
// WGUARD_* environment variables and finally args. Later sources win.
func Load(args []string) (*Config, error) {
	path, err := configPath(args)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigPath = path
	}
	cfg.applyEnv()

	fs := cfg.flagSet(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.InjectInterface == "" && len(cfg.Interfaces) > 0 {
		cfg.InjectInterface = cfg.Interfaces[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath finds -config in args, falling back to WGUARD_CONFIG.
func configPath(args []string) (string, error) {
	scratch := Defaults()
	fs := scratch.flagSet(io.Discard)
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if scratch.ConfigPath != "" {
		return scratch.ConfigPath, nil
	}
	return os.Getenv(envPrefix + "CONFIG"), nil
}

func (c *Config) flagSet(out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("wguard", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "Path to a YAML config file")
	fs.Func("i", "Capture interface(s) in monitor mode (comma separated)", func(s string) error {
		c.Interfaces = parseInterfaces(s)
		return nil
	})
	fs.StringVar(&c.InjectInterface, "inject", c.InjectInterface, "Injection interface (defaults to the first capture interface)")
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP server address")
	fs.IntVar(&c.GRPCPort, "grpc", c.GRPCPort, "gRPC health server port (0 disables)")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "Path to SQLite database (empty disables persistence)")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable verbose debug logging")
	fs.BoolVar(&c.AutoNuke, "auto-nuke", c.AutoNuke, "Deauthenticate rogue APs automatically")
	fs.DurationVar(&c.DeauthInterval, "deauth-interval", c.DeauthInterval, "Pause between injected deauth frames")
	fs.IntVar(&c.HistoryCapacity, "history", c.HistoryCapacity, "Signal samples kept per AP")
	fs.DurationVar(&c.EvictInterval, "evict", c.EvictInterval, "Liveness eviction period")
	fs.DurationVar(&c.Retention, "retention", c.Retention, "Liveness retention")
	fs.Func("lat", "Static sensor latitude", floatSetter(&c.Latitude))
	fs.Func("lng", "Static sensor longitude", floatSetter(&c.Longitude))
	fs.StringVar(&c.AuthUser, "auth-user", c.AuthUser, "HTTP basic auth user")
	fs.StringVar(&c.AuthHash, "auth-hash", c.AuthHash, "bcrypt hash of the HTTP basic auth password")
	fs.StringVar(&c.SensorID, "sensor-id", c.SensorID, "Sensor identifier stamped on alerts")
	return fs
}

// Usage writes the flag help to w.
func Usage(w io.Writer) {
	fs := Defaults().flagSet(w)
	fs.PrintDefaults()
}

func floatSetter(dst **float64) func(string) error {
	return func(s string) error {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &f
		return nil
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from WGUARD_* variables. Unparseable values are ignored.
func (c *Config) applyEnv() {
	if v, ok := lookupEnv("INTERFACES"); ok {
		c.Interfaces = parseInterfaces(v)
	}
	c.InjectInterface = getEnv("INJECT_INTERFACE", c.InjectInterface)
	c.Addr = getEnv("ADDR", c.Addr)
	c.GRPCPort = getEnvInt("GRPC", c.GRPCPort)
	c.DBPath = getEnv("DB", c.DBPath)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.AutoNuke = getEnvBool("AUTO_NUKE", c.AutoNuke)
	c.DeauthInterval = getEnvDuration("DEAUTH_INTERVAL", c.DeauthInterval)
	c.HistoryCapacity = getEnvInt("HISTORY", c.HistoryCapacity)
	c.EvictInterval = getEnvDuration("EVICT", c.EvictInterval)
	c.Retention = getEnvDuration("RETENTION", c.Retention)
	if v, ok := lookupEnv("LAT"); ok {
		floatSetter(&c.Latitude)(v)
	}
	if v, ok := lookupEnv("LNG"); ok {
		floatSetter(&c.Longitude)(v)
	}
	c.AuthUser = getEnv("AUTH_USER", c.AuthUser)
	c.AuthHash = getEnv("AUTH_HASH", c.AuthHash)
	c.SensorID = getEnv("SENSOR_ID", c.SensorID)
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Interfaces) == 0 {
		errs = append(errs, errors.New("at least one capture interface is required"))
	}
	for _, iface := range c.Interfaces {
		if !domain.IsValidInterface(iface) {
			errs = append(errs, fmt.Errorf("%w: %q", domain.ErrInvalidInterfaceName, iface))
		}
	}
	if c.InjectInterface != "" && !domain.IsValidInterface(c.InjectInterface) {
		errs = append(errs, fmt.Errorf("%w: %q", domain.ErrInvalidInterfaceName, c.InjectInterface))
	}
	if c.HistoryCapacity < 2 {
		errs = append(errs, fmt.Errorf("history must be at least 2, got %d", c.HistoryCapacity))
	}
	if c.DeauthInterval <= 0 {
		errs = append(errs, errors.New("deauth-interval must be positive"))
	}
	if c.EvictInterval <= 0 || c.Retention <= 0 {
		errs = append(errs, errors.New("evict and retention must be positive"))
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid grpc port %d", c.GRPCPort))
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		errs = append(errs, errors.New("lat and lng must be set together"))
	}
	if c.AuthHash != "" && c.AuthUser == "" {
		errs = append(errs, errors.New("auth-hash requires auth-user"))
	}
	return errors.Join(errs...)
}

// HasLocation reports whether a static sensor location is configured.
func (c *Config) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

func parseInterfaces(s string) []string {
	var ifaces []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ifaces = append(ifaces, trimmed)
		}
	}
	return ifaces
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(envPrefix + key)
}

func getEnv(key, fallback string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := lookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := lookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := lookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// defaultDBPath returns ~/.wguard/wguard.db, or a file in the working
// directory when the home directory is unknown.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wguard.db"
	}
	return filepath.Join(home, ".wguard", "wguard.db")
}
