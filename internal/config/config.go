// Package config resolves the console's settings.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults
//  2. the YAML file named by --config or NEXUS_CONFIG (optional)
//  3. the file's development/production section for the active environment
//  4. NEXUS_* environment variables
//  5. command-line flags
//
// The result is a single API base URL. The push-channel URL derives from
// it unless relay_url is set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Environment selects the backend host and the matching override section.
type Environment string

const (
	// Development talks to a bot running on this machine.
	Development Environment = "development"
	// Production talks to the hosted bot.
	Production Environment = "production"
)

// Default API hosts per environment.
var defaultAPIURL = map[Environment]string{
	Development: "http://localhost:3001",
	Production:  "https://backend-femboyhelper-production.up.railway.app",
}

// Config is the resolved console configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	// APIURL is the bot's HTTP base URL. Empty means the environment default.
	APIURL string `yaml:"api_url"`

	// Relay overrides the push-channel URL. Use RelayURL to read the
	// effective value.
	Relay string `yaml:"relay_url"`

	// StatsInterval is how often the dashboard polls /stats.
	StatsInterval time.Duration `yaml:"stats_interval"`

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// LogFile receives JSON logs. Empty disables file logging.
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	// GuildID preselects a guild on the wedding and broadcast surfaces.
	GuildID string `yaml:"guild_id"`

	LiveLogCapacity     int `yaml:"live_log_capacity"`
	CeremonyLogCapacity int `yaml:"ceremony_log_capacity"`

	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the fields an environment section may replace.
type Overrides struct {
	APIURL         string        `yaml:"api_url,omitempty"`
	Relay          string        `yaml:"relay_url,omitempty"`
	StatsInterval  time.Duration `yaml:"stats_interval,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	LogFile        string        `yaml:"log_file,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
	GuildID        string        `yaml:"guild_id,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment:         Production,
		StatsInterval:       5 * time.Second,
		RequestTimeout:      30 * time.Second,
		LogLevel:            "info",
		LiveLogCapacity:     150,
		CeremonyLogCapacity: 100,
	}
}

// Flags are the command-line overrides.
type Flags struct {
	Config   string
	APIURL   string
	RelayURL string
	Env      string
	Guild    string
	LogFile  string
	LogLevel string

	fs *pflag.FlagSet
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "path to nexus.yaml (default $NEXUS_CONFIG)")
	fs.StringVar(&f.APIURL, "api-url", "", "bot API base URL")
	fs.StringVar(&f.RelayURL, "relay-url", "", "push channel URL (derived from --api-url when empty)")
	fs.StringVar(&f.Env, "env", "", "environment: development or production")
	fs.StringVar(&f.Guild, "guild", "", "guild id to preselect")
	fs.StringVar(&f.LogFile, "log-file", "", "write JSON logs to this file")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error")
	return f
}

func (f *Flags) changed(name string) bool {
	return f != nil && f.fs != nil && f.fs.Changed(name)
}

// Resolve builds the configuration from every layer and validates it.
// flags may be nil.
func Resolve(flags *Flags) (*Config, error) {
	cfg := Default()

	path := os.Getenv("NEXUS_CONFIG")
	if flags.changed("config") {
		path = flags.Config
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if v := os.Getenv("NEXUS_ENV"); v != "" {
		cfg.Environment = Environment(v)
	}
	if flags.changed("env") {
		cfg.Environment = Environment(flags.Env)
	}

	cfg.applyEnvironmentOverrides()
	cfg.applyEnv()
	cfg.applyFlags(flags)

	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL[cfg.Environment]
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults and applies its environment section.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyEnvironmentOverrides()
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL[cfg.Environment]
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var o *Overrides
	switch c.Environment {
	case Development:
		o = c.Development
	case Production:
		o = c.Production
	}
	if o == nil {
		return
	}

	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.Relay != "" {
		c.Relay = o.Relay
	}
	if o.StatsInterval != 0 {
		c.StatsInterval = o.StatsInterval
	}
	if o.RequestTimeout != 0 {
		c.RequestTimeout = o.RequestTimeout
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.GuildID != "" {
		c.GuildID = o.GuildID
	}
}

func (c *Config) applyEnv() {
	for name, dst := range map[string]*string{
		"NEXUS_API_URL":   &c.APIURL,
		"NEXUS_RELAY_URL": &c.Relay,
		"NEXUS_GUILD":     &c.GuildID,
		"NEXUS_LOG_FILE":  &c.LogFile,
	} {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

func (c *Config) applyFlags(f *Flags) {
	if f.changed("api-url") {
		c.APIURL = f.APIURL
	}
	if f.changed("relay-url") {
		c.Relay = f.RelayURL
	}
	if f.changed("guild") {
		c.GuildID = f.Guild
	}
	if f.changed("log-file") {
		c.LogFile = f.LogFile
	}
	if f.changed("log-level") {
		c.LogLevel = f.LogLevel
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}

	if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL))
	}

	if c.Relay != "" {
		u, err := url.Parse(c.Relay)
		if err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("relay_url is not a URL: %q", c.Relay))
		} else if _, ok := wsScheme[u.Scheme]; !ok {
			errs = append(errs, fmt.Errorf("relay_url must use ws, wss, http or https, got %q", u.Scheme))
		}
	}

	if c.StatsInterval <= 0 {
		errs = append(errs, errors.New("stats_interval must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.LiveLogCapacity <= 0 {
		errs = append(errs, errors.New("live_log_capacity must be positive"))
	}
	if c.CeremonyLogCapacity <= 0 {
		errs = append(errs, errors.New("ceremony_log_capacity must be positive"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

var wsScheme = map[string]string{
	"http":  "ws",
	"https": "wss",
	"ws":    "ws",
	"wss":   "wss",
}

// RelayURL returns the socket.io websocket endpoint, derived from APIURL
// unless relay_url is set. A bare host gets the default socket.io path and
// the Engine.IO v4 websocket query.
func (c *Config) RelayURL() (string, error) {
	raw := c.Relay
	if raw == "" {
		raw = c.APIURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("relay url: %w", err)
	}
	scheme, ok := wsScheme[u.Scheme]
	if !ok {
		return "", fmt.Errorf("relay url: unsupported scheme %q", u.Scheme)
	}
	u.Scheme = scheme
	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket.io/"
	}
	q := u.Query()
	if q.Get("EIO") == "" {
		q.Set("EIO", "4")
	}
	if q.Get("transport") == "" {
		q.Set("transport", "websocket")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
