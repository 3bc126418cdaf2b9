package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "multitube.toml"

// Config is the runtime configuration of the server.
type Config struct {
	Port        int      `koanf:"port"`
	Name        string   `koanf:"name"`
	ServerURLs  []string `koanf:"server_urls"`
	Hide        bool     `koanf:"hide"`
	Description string   `koanf:"description"`
	Owner       string   `koanf:"owner"`
	Tags        string   `koanf:"tags"`
	CredKey     string   `koanf:"cred_key"`

	CacheDir       string        `koanf:"cache_dir"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	SearchTimeout  time.Duration `koanf:"search_timeout"`
	AllowedOrigins []string      `koanf:"allowed_origins"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"` // "json" or "console"
}

func defaultConfig() *Config {
	return &Config{
		Port:           8095,
		Name:           "multitube",
		Description:    "Paste video links and tile the players",
		Owner:          "multitube",
		Tags:           "youtube,video,dashboard",
		CacheDir:       "./multitube-data",
		CacheTTL:       10 * time.Minute,
		SearchTimeout:  10 * time.Second,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5000"},
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// flagValues mirrors every command line flag. Only flags the user set
// explicitly override the file.
type flagValues struct {
	configPath     string
	port           int
	name           string
	serverURLs     []string
	hide           bool
	description    string
	owner          string
	tags           string
	credKey        string
	cacheDir       string
	cacheTTL       time.Duration
	searchTimeout  time.Duration
	allowedOrigins []string
	logLevel       string
	logFormat      string
}

func (f *flagValues) register(cmd *cobra.Command) {
	d := defaultConfig()
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.configPath, "config", "", "TOML config file (default ./"+defaultConfigFile+" when present)")
	flags.IntVar(&f.port, "port", d.Port, "local HTTP port (0 to disable)")
	flags.StringVar(&f.name, "name", d.Name, "Portal lease display name")
	flags.StringSliceVar(&f.serverURLs, "server-url", nil, "relayserver base URL(s); repeat or comma-separated (from env PORTAL_RELAY/RELAY/RELAY_URL/SERVER_URL)")
	flags.BoolVar(&f.hide, "hide", d.Hide, "hide this lease from portal listings")
	flags.StringVar(&f.description, "description", d.Description, "Portal lease description")
	flags.StringVar(&f.owner, "owner", d.Owner, "Portal lease owner")
	flags.StringVar(&f.tags, "tags", d.Tags, "comma-separated Portal lease tags")
	flags.StringVar(&f.credKey, "cred-key", "", "optional credential key for the Portal listener (base64 private key)")
	flags.StringVar(&f.cacheDir, "cache-dir", d.CacheDir, "directory for the lookup cache (empty disables it)")
	flags.DurationVar(&f.cacheTTL, "cache-ttl", d.CacheTTL, "how long lookup results are reused")
	flags.DurationVar(&f.searchTimeout, "search-timeout", d.SearchTimeout, "timeout for one upstream lookup")
	flags.StringSliceVar(&f.allowedOrigins, "allowed-origin", d.AllowedOrigins, "origins allowed to call /api (repeatable)")
	flags.StringVar(&f.logLevel, "log-level", d.LogLevel, "debug, info, warn or error")
	flags.StringVar(&f.logFormat, "log-format", d.LogFormat, "json or console")
}

// loadConfig layers defaults, the TOML file, explicitly set flags and
// finally the relay environment variables when no relay was configured.
func loadConfig(cmd *cobra.Command, f *flagValues) (*Config, error) {
	cfg := defaultConfig()

	path := f.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	flags := cmd.Flags()
	set := func(name string) bool { return flags.Changed(name) }
	if set("port") {
		cfg.Port = f.port
	}
	if set("name") {
		cfg.Name = f.name
	}
	if set("server-url") {
		cfg.ServerURLs = f.serverURLs
	}
	if set("hide") {
		cfg.Hide = f.hide
	}
	if set("description") {
		cfg.Description = f.description
	}
	if set("owner") {
		cfg.Owner = f.owner
	}
	if set("tags") {
		cfg.Tags = f.tags
	}
	if set("cred-key") {
		cfg.CredKey = f.credKey
	}
	if set("cache-dir") {
		cfg.CacheDir = f.cacheDir
	}
	if set("cache-ttl") {
		cfg.CacheTTL = f.cacheTTL
	}
	if set("search-timeout") {
		cfg.SearchTimeout = f.searchTimeout
	}
	if set("allowed-origin") {
		cfg.AllowedOrigins = f.allowedOrigins
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = f.logFormat
	}

	cfg.ServerURLs = cleanServerURLs(cfg.ServerURLs)
	if len(cfg.ServerURLs) == 0 {
		cfg.ServerURLs = cleanServerURLs(defaultRelayList())
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive")
	}
	return nil
}

func defaultRelayList() []string {
	for _, key := range []string{"PORTAL_RELAY", "RELAY", "RELAY_URL", "SERVER_URL"} {
		val := strings.TrimSpace(os.Getenv(key))
		if val != "" {
			return strings.Split(val, ",")
		}
	}
	return nil
}

func cleanServerURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		if raw == "" {
			continue
		}
		for _, part := range strings.Split(raw, ",") {
			p := strings.TrimSpace(part)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func splitTags(raw string) []string {
	tokens := strings.Split(raw, ",")
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if t := strings.TrimSpace(tok); t != "" {
			out = append(out, t)
		}
	}
	return out
}
