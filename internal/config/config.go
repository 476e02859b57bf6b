package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath            string
	ConfigPath        string // Path to the YAML settings file
	RemoteDatabaseURL string // Postgres DSN, empty when no remote store is used
	LogLevel          string
	LogFormat         string
	GeminiAPIKey      string
}

// Settings holds the behaviour that can be tuned from YAML.
type Settings struct {
	Fetch  FetchSettings  `yaml:"fetch"`
	Import ImportSettings `yaml:"import"`
	Server ServerSettings `yaml:"server"`
}

type FetchSettings struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	UseBrowser   bool          `yaml:"use_browser"`
	Proxies      []string      `yaml:"proxies"`
	MinBodyBytes int           `yaml:"min_body_bytes"`
}

type ImportSettings struct {
	DefaultURL  string `yaml:"default_url"`
	SkipConfirm bool   `yaml:"skip_confirm"`
}

type ServerSettings struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultImportURL = "https://kdrive.infomaniak.com/app/share/1758972/b339e8b8-c36b-4bbd-9381-2d33dc82280d"
)

// DefaultProxies are tried in order after a direct request fails. A
// template whose path is /get answers with a JSON envelope.
var DefaultProxies = []string{
	"https://api.allorigins.win/get?url=%s",
	"https://api.allorigins.win/raw?url=%s",
}

// GetAppConfig reads basic infrastructure settings from environment variables.
// A .env file in the working directory is loaded first when present.
func GetAppConfig() (AppConfig, error) {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := AppConfig{
		DBPath:            os.Getenv("DB_PATH"),
		ConfigPath:        os.Getenv("CONFIG_PATH"),
		RemoteDatabaseURL: os.Getenv("REMOTE_DATABASE_URL"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         os.Getenv("LOG_FORMAT"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
	}

	// Set defaults if not provided
	if cfg.DBPath == "" {
		cfg.DBPath = "./local-data/tea.db"
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = "config.yaml"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	return cfg, nil
}

// DefaultSettings is what LoadSettings returns when no file exists.
func DefaultSettings() Settings {
	s := Settings{Import: ImportSettings{DefaultURL: DefaultImportURL, SkipConfirm: true}}
	s.applyDefaults()
	return s
}

// LoadSettings reads the YAML settings file. A missing file is not an
// error; the defaults are used instead.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings, fills the gaps with defaults and
// validates the result.
func ParseSettings(data []byte) (Settings, error) {
	s := Settings{Import: ImportSettings{DefaultURL: DefaultImportURL, SkipConfirm: true}}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyDefaults() {
	if s.Fetch.Timeout == 0 {
		s.Fetch.Timeout = 20 * time.Second
	}
	if s.Fetch.UserAgent == "" {
		s.Fetch.UserAgent = DefaultUserAgent
	}
	if s.Fetch.Proxies == nil {
		s.Fetch.Proxies = append([]string(nil), DefaultProxies...)
	}
	if s.Fetch.MinBodyBytes == 0 {
		s.Fetch.MinBodyBytes = 200
	}
	if s.Server.Addr == "" {
		s.Server.Addr = ":8080"
	}
	if s.Server.ReadTimeout == 0 {
		s.Server.ReadTimeout = 15 * time.Second
	}
	if s.Server.WriteTimeout == 0 {
		s.Server.WriteTimeout = 60 * time.Second
	}
	if s.Server.AllowedOrigins == nil {
		s.Server.AllowedOrigins = []string{"*"}
	}
}

// Validate reports every problem at once.
func (s Settings) Validate() error {
	var errs []error
	if s.Fetch.Timeout < 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if s.Fetch.MinBodyBytes < 0 {
		errs = append(errs, errors.New("fetch.min_body_bytes must not be negative"))
	}
	for _, p := range s.Fetch.Proxies {
		if strings.Count(p, "%s") != 1 {
			errs = append(errs, fmt.Errorf("fetch.proxies: %q must contain exactly one %%s", p))
		}
	}
	if u := s.Import.DefaultURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		errs = append(errs, fmt.Errorf("import.default_url: %q is not an http(s) URL", u))
	}
	if s.Server.ReadTimeout < 0 || s.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}
	return errors.Join(errs...)
}
