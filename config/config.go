package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

const (
	// envPrefix is the prefix for environment variable overrides, e.g. SHIELDPHISH_SERVER_LISTEN
	envPrefix = "SHIELDPHISH_"
	// delimiter separates nested koanf keys
	delimiter = "."
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds the complete shieldphish service configuration
type Config struct {
	// Server contains HTTP server settings
	Server Server `json:"server" koanf:"server"`
	// Analyzer contains analysis pipeline settings
	Analyzer Analyzer `json:"analyzer" koanf:"analyzer"`
	// Store selects and configures the cache and history backend
	Store Store `json:"store" koanf:"store"`
	// Cloudflare configures the Workers AI client used for summaries and suggestions
	Cloudflare Cloudflare `json:"cloudflare" koanf:"cloudflare"`
	// Slack configures error and high risk notifications
	Slack Slack `json:"slack" koanf:"slack"`
}

// Server holds HTTP server settings
type Server struct {
	// Listen is the address the server binds to
	Listen string `json:"listen" koanf:"listen" default:":8080"`
	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout time.Duration `json:"readtimeout" koanf:"readtimeout" default:"30s"`
	// WriteTimeout is the maximum duration before timing out a response write
	WriteTimeout time.Duration `json:"writetimeout" koanf:"writetimeout" default:"60s"`
	// ShutdownGracePeriod is how long in-flight requests and background writes get on shutdown
	ShutdownGracePeriod time.Duration `json:"shutdowngraceperiod" koanf:"shutdowngraceperiod" default:"30s"`
	// RequestTimeout bounds a whole API request including analysis
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"45s"`
	// MaxBodySize is the maximum accepted request body in bytes
	MaxBodySize int64 `json:"maxbodysize" koanf:"maxbodysize" default:"102400"`
	// UserHeader is the trusted header set by the upstream auth proxy carrying the caller's user ID
	UserHeader string `json:"userheader" koanf:"userheader" default:"X-User-ID"`
	// Debug enables debug logging
	Debug bool `json:"debug" koanf:"debug" default:"false"`
	// Pretty enables human readable log output
	Pretty bool `json:"pretty" koanf:"pretty" default:"false"`
}

// Analyzer holds analysis pipeline settings
type Analyzer struct {
	// FetchTimeout bounds retrieval of the target page
	FetchTimeout time.Duration `json:"fetchtimeout" koanf:"fetchtimeout" default:"8s"`
	// TLSTimeout bounds the certificate check
	TLSTimeout time.Duration `json:"tlstimeout" koanf:"tlstimeout" default:"8s"`
	// AITimeout bounds each AI call
	AITimeout time.Duration `json:"aitimeout" koanf:"aitimeout" default:"8s"`
	// MaxContentLength is the number of characters of page content analyzed
	MaxContentLength int `json:"maxcontentlength" koanf:"maxcontentlength" default:"250000"`
	// MaxRedirects is the number of redirects followed when fetching
	MaxRedirects int `json:"maxredirects" koanf:"maxredirects" default:"10"`
	// UserAgent overrides the browser user agent sent when fetching
	UserAgent string `json:"useragent" koanf:"useragent"`
	// FreshnessWindow is how long cached results are served
	FreshnessWindow time.Duration `json:"freshnesswindow" koanf:"freshnesswindow" default:"168h"`
	// PersistTimeout bounds each background cache or history write
	PersistTimeout time.Duration `json:"persisttimeout" koanf:"persisttimeout" default:"10s"`
}

// Store selects the persistence backend
type Store struct {
	// Backend is one of memory, redis, sqlite or postgres
	Backend string `json:"backend" koanf:"backend" default:"memory"`
	// Redis configures the redis backend
	Redis Redis `json:"redis" koanf:"redis"`
	// SQLite configures the sqlite backend
	SQLite SQLite `json:"sqlite" koanf:"sqlite"`
	// Postgres configures the postgres backend
	Postgres Postgres `json:"postgres" koanf:"postgres"`
}

// Redis configures the redis store
type Redis struct {
	// Addr is the host:port of the redis server
	Addr string `json:"addr" koanf:"addr" default:"localhost:6379"`
	// Username for ACL authentication
	Username string `json:"username" koanf:"username"`
	// Password for authentication
	Password string `json:"password" koanf:"password" sensitive:"true"`
	// DB is the logical database number
	DB int `json:"db" koanf:"db" default:"0"`
	// Prefix namespaces keys
	Prefix string `json:"prefix" koanf:"prefix" default:"shieldphish:"`
	// CacheTTL expires cached results, zero keeps them
	CacheTTL time.Duration `json:"cachettl" koanf:"cachettl" default:"0s"`
}

// SQLite configures the sqlite store
type SQLite struct {
	// Path is the database file location
	Path string `json:"path" koanf:"path" default:"./data/shieldphish.db"`
}

// Postgres configures the postgres store
type Postgres struct {
	// URL is the connection string
	URL string `json:"url" koanf:"url" sensitive:"true"`
	// MaxConns caps the pool size
	MaxConns int32 `json:"maxconns" koanf:"maxconns" default:"10"`
}

// Cloudflare configures Workers AI access
type Cloudflare struct {
	// AccountID is the Cloudflare account identifier
	AccountID string `json:"accountid" koanf:"accountid"`
	// APIToken is a token with Workers AI permissions
	APIToken string `json:"apitoken" koanf:"apitoken" sensitive:"true"`
	// Model is the Workers AI text generation model
	Model string `json:"model" koanf:"model" default:"@cf/meta/llama-3.1-8b-instruct"`
	// BaseURL overrides the Cloudflare API endpoint
	BaseURL string `json:"baseurl" koanf:"baseurl"`
	// RequestTimeout bounds each HTTP request to Cloudflare
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"10s"`
}

// Slack configures webhook notifications
type Slack struct {
	// WebhookURL is the incoming webhook; notifications are log-only when empty
	WebhookURL string `json:"webhookurl" koanf:"webhookurl" sensitive:"true"`
	// RequestTimeout bounds each webhook post
	RequestTimeout time.Duration `json:"requesttimeout" koanf:"requesttimeout" default:"10s"`
	// HighRiskThreshold is the score at or above which results are announced
	HighRiskThreshold int `json:"highriskthreshold" koanf:"highriskthreshold" default:"90"`
}

// Load builds the configuration from defaults, an optional YAML file and SHIELDPHISH_ environment variables,
// in increasing order of precedence. A missing file is not an error
func Load(cfgFile *string) (*Config, error) {
	k := koanf.New(delimiter)

	cfg := &Config{}
	defaults.SetDefaults(cfg)

	if cfgFile != nil && *cfgFile != "" {
		if _, err := os.Stat(*cfgFile); err == nil {
			if err := k.Load(file.Provider(*cfgFile), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrConfigFile, *cfgFile, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigFile, *cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, delimiter, envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigEnv, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps SHIELDPHISH_STORE_REDIS_ADDR to store.redis.addr
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", delimiter)
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreRedis, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreBackend, c.Store.Backend)
	}

	if c.Store.Backend == StorePostgres && c.Store.Postgres.URL == "" {
		return ErrMissingPostgresURL
	}

	if c.Analyzer.MaxContentLength <= 0 {
		return fmt.Errorf("%w: maxcontentlength must be positive", ErrInvalidAnalyzerSetting)
	}

	if c.Analyzer.FreshnessWindow <= 0 {
		return fmt.Errorf("%w: freshnesswindow must be positive", ErrInvalidAnalyzerSetting)
	}

	return nil
}

// AnalysisBudget is the longest an analysis can run on its per-step timeouts:
// the fetch, then the TLS inspection and AI calls side by side
func (c *Config) AnalysisBudget() time.Duration {
	return c.Analyzer.FetchTimeout + max(c.Analyzer.TLSTimeout, c.Analyzer.AITimeout)
}

// AIConfigured reports whether Workers AI credentials are present
func (c *Config) AIConfigured() bool {
	return c.Cloudflare.AccountID != "" && c.Cloudflare.APIToken != ""
}
