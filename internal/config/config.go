package config

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"daycal/internal/fsutil"
	"daycal/internal/model"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// DataConfig says where the per-year day documents come from.
type DataConfig struct {
	// Dir holds {year}.json files. It is also served under /data/.
	Dir string `yaml:"dir" json:"dir"`
	// SourceURL, when set, is fetched as {SourceURL}/data/{year}.json
	// instead of reading Dir.
	SourceURL string `yaml:"source_url" json:"source_url"`
	// PrefetchCron schedules warming of the current and next year.
	PrefetchCron string `yaml:"prefetch_cron" json:"prefetch_cron"`
}

// ExportConfig holds the defaults of the ICS exporter.
type ExportConfig struct {
	OutDir       string `yaml:"out_dir" json:"out_dir"`
	Verify       bool   `yaml:"verify" json:"verify"`
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`
	Domain       string `yaml:"domain" json:"domain"`
	Filename     string `yaml:"filename" json:"filename"`
}

// HTTPConfig tunes the API server.
type HTTPConfig struct {
	MaxRequestsPerSecond int      `yaml:"max_requests_per_second" json:"max_requests_per_second"`
	AllowedOrigins       []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone that decides what "today" is.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale selects the relative-date phrase table (en, nl, de).
	Locale string `yaml:"locale" json:"locale"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	Data   DataConfig   `yaml:"data" json:"data"`
	Export ExportConfig `yaml:"export" json:"export"`
	HTTP   HTTPConfig   `yaml:"http" json:"http"`

	// Regions maps region IDs to display names; used when a bundle does not
	// carry its own region list.
	Regions map[string]string `yaml:"regions" json:"regions"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "Europe/Amsterdam"
	defaultLocale       = "en"
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
	defaultDataDir      = "data"
	defaultPrefetchCron = "@daily"
	defaultOutDir       = "."
	defaultRPS          = 20
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    defaultListen,
		Timezone:  defaultTimezone,
		Locale:    defaultLocale,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Data: DataConfig{
			Dir:          defaultDataDir,
			PrefetchCron: defaultPrefetchCron,
		},
		Export: ExportConfig{
			OutDir: defaultOutDir,
			Verify: true,
		},
		HTTP: HTTPConfig{
			MaxRequestsPerSecond: defaultRPS,
			AllowedOrigins:       []string{"*"},
		},
		Regions:   map[string]string{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	c.Locale = strings.ToLower(strings.TrimSpace(c.Locale))
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = defaultLogLevel
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		c.LogFormat = defaultLogFormat
	}

	if c.Data.Dir == "" {
		c.Data.Dir = defaultDataDir
	}
	c.Data.SourceURL = strings.TrimRight(strings.TrimSpace(c.Data.SourceURL), "/")
	if c.Data.PrefetchCron == "" {
		c.Data.PrefetchCron = defaultPrefetchCron
	}
	if c.Export.OutDir == "" {
		c.Export.OutDir = defaultOutDir
	}

	if c.HTTP.MaxRequestsPerSecond <= 0 {
		c.HTTP.MaxRequestsPerSecond = defaultRPS
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Regions == nil {
		c.Regions = map[string]string{}
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Load loads configuration from the given YAML path, then applies DAYCAL_*
// environment overrides (a .env file in the working directory is honored).
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				cfg.ApplyEnv()
				cfg.Normalize()
				return cfg, err
			}
			cfg.ApplyEnv()
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.Normalize()

	return &cfg, nil
}

// ApplyEnv overrides fields from DAYCAL_* environment variables. Unset
// variables leave the field alone.
func (c *Config) ApplyEnv() {
	c.Listen = getEnvString("DAYCAL_LISTEN", c.Listen)
	c.Timezone = getEnvString("DAYCAL_TIMEZONE", c.Timezone)
	c.Locale = getEnvString("DAYCAL_LOCALE", c.Locale)
	c.LogLevel = getEnvString("DAYCAL_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvString("DAYCAL_LOG_FORMAT", c.LogFormat)
	c.Data.Dir = getEnvString("DAYCAL_DATA_DIR", c.Data.Dir)
	c.Data.SourceURL = getEnvString("DAYCAL_DATA_SOURCE_URL", c.Data.SourceURL)
	c.Data.PrefetchCron = getEnvString("DAYCAL_DATA_PREFETCH_CRON", c.Data.PrefetchCron)
	c.Export.OutDir = getEnvString("DAYCAL_EXPORT_OUT_DIR", c.Export.OutDir)
	c.Export.Verify = getEnvBool("DAYCAL_EXPORT_VERIFY", c.Export.Verify)
	c.Export.CalendarName = getEnvString("DAYCAL_EXPORT_CALENDAR_NAME", c.Export.CalendarName)
	c.Export.Domain = getEnvString("DAYCAL_EXPORT_DOMAIN", c.Export.Domain)
	c.Export.Filename = getEnvString("DAYCAL_EXPORT_FILENAME", c.Export.Filename)
	c.HTTP.MaxRequestsPerSecond = getEnvInt("DAYCAL_HTTP_MAX_REQUESTS_PER_SECOND", c.HTTP.MaxRequestsPerSecond)
	if v, ok := os.LookupEnv("DAYCAL_HTTP_ALLOWED_ORIGINS"); ok {
		c.HTTP.AllowedOrigins = splitList(v)
	}

	user, hasUser := os.LookupEnv("DAYCAL_BASIC_AUTH_USERNAME")
	pass, hasPass := os.LookupEnv("DAYCAL_BASIC_AUTH_PASSWORD")
	if hasUser || hasPass {
		c.BasicAuth = &BasicAuthConfig{Username: user, Password: pass}
	}
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0o700, 0o600)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// RegionList returns Regions as model regions sorted by ID.
func (c *Config) RegionList() []model.Region {
	ids := make([]string, 0, len(c.Regions))
	for id := range c.Regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.Region, len(ids))
	for i, id := range ids {
		out[i] = model.Region{ID: id, Name: c.Regions[id]}
	}
	return out
}
