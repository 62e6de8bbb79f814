package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/networks"
	"github.com/tranvictor/kredits/util/explorers"
	"github.com/tranvictor/kredits/util/store"
)

// EnvPrefix is accepted in front of every variable name, so existing
// OA_* deployments keep working. The prefixed form wins when both are set.
const EnvPrefix = "OA_"

const (
	DefaultKeyword     = "kredits"
	DefaultListenAddr  = ":8080"
	DefaultHTTPTimeout = 30 * time.Second

	DefaultExplorerRateLimit = explorers.DefaultRequestsPerSecond
)

type StoreConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type Config struct {
	Keyword          string `yaml:"bot_keyword"`
	AssetID          string `yaml:"asset_id"`
	AssetFromAddress string `yaml:"asset_from_address"`
	DefaultQuantity  int64  `yaml:"default_quantity"`
	// 0 disables the cap
	MaxQuantity int64 `yaml:"max_quantity"`

	ServerURL      string `yaml:"server_url"`
	ServerUsername string `yaml:"server_username"`
	ServerPassword string `yaml:"server_password"`

	// empty means ++ works everywhere
	PlusPlusRooms []string `yaml:"plusplus_rooms"`
	Admins        []string `yaml:"admins"`

	Network            string        `yaml:"network"`
	ListTotalScope     string        `yaml:"list_total_scope"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`

	// outbound explorer requests per second, 0 disables the limiter
	ExplorerRateLimit float64 `yaml:"explorer_rate_limit"`

	Store StoreConfig `yaml:"store"`

	ListenAddr   string `yaml:"listen_addr"`
	WebhookToken string `yaml:"webhook_token"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		Keyword:           DefaultKeyword,
		DefaultQuantity:   1,
		Network:           networks.Mainnet.GetName(),
		ListTotalScope:    string(common.TotalAllOwners),
		HTTPTimeout:       DefaultHTTPTimeout,
		ExplorerRateLimit: DefaultExplorerRateLimit,
		Store:             StoreConfig{Backend: store.BackendFile},
		ListenAddr:        DefaultListenAddr,
		LogLevel:          "info",
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(string) (string, bool)

func lookup(env LookupFunc, name string) (string, bool) {
	if v, ok := env(EnvPrefix + name); ok {
		return strings.TrimSpace(v), true
	}
	if v, ok := env(name); ok {
		return strings.TrimSpace(v), true
	}
	return "", false
}

func (c *Config) ApplyEnv(env LookupFunc) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(env, name); ok {
			*dst = v
		}
	}
	i64 := func(name string, dst *int64) {
		if v, ok := lookup(env, name); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be an integer, got %q", name, v))
				return
			}
			*dst = n
		}
	}
	integer := func(name string, dst *int) {
		n := int64(*dst)
		i64(name, &n)
		*dst = int(n)
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(env, name); ok {
			*dst = SplitList(v)
		}
	}

	str("BOT_KEYWORD", &c.Keyword)
	str("ASSET_ID", &c.AssetID)
	str("ASSET_FROM_ADDRESS", &c.AssetFromAddress)
	i64("DEFAULT_QUANTITY", &c.DefaultQuantity)
	i64("MAX_QUANTITY", &c.MaxQuantity)
	str("SERVER_URL", &c.ServerURL)
	str("SERVER_USERNAME", &c.ServerUsername)
	str("SERVER_PASSWORD", &c.ServerPassword)
	list("PLUSPLUS_ROOMS", &c.PlusPlusRooms)
	list("ADMINS", &c.Admins)
	str("NETWORK", &c.Network)
	str("LIST_TOTAL_SCOPE", &c.ListTotalScope)
	integer("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	str("STORE_BACKEND", &c.Store.Backend)
	str("STORE_PATH", &c.Store.Path)
	str("REDIS_ADDR", &c.Store.RedisAddr)
	str("REDIS_PASSWORD", &c.Store.RedisPassword)
	integer("REDIS_DB", &c.Store.RedisDB)
	str("LISTEN_ADDR", &c.ListenAddr)
	str("WEBHOOK_TOKEN", &c.WebhookToken)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)

	if v, ok := lookup(env, "EXPLORER_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("EXPLORER_RATE_LIMIT must be a number, got %q", v))
		} else {
			c.ExplorerRateLimit = f
		}
	}
	if v, ok := lookup(env, "HTTP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("HTTP_TIMEOUT must be a duration like 30s, got %q", v))
		} else {
			c.HTTPTimeout = d
		}
	}

	return errors.Join(errs...)
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks what every command needs. Settings only some commands
// use (SERVER_URL, ASSET_ID, ...) are checked by RequireTransfer and
// RequireAsset.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Keyword) == "" {
		errs = append(errs, fmt.Errorf("BOT_KEYWORD cannot be empty"))
	}
	if strings.ContainsAny(c.Keyword, " \t") {
		errs = append(errs, fmt.Errorf("BOT_KEYWORD cannot contain whitespace"))
	}
	if c.DefaultQuantity <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_QUANTITY must be positive, got %d", c.DefaultQuantity))
	}
	if c.MaxQuantity < 0 {
		errs = append(errs, fmt.Errorf("MAX_QUANTITY cannot be negative, got %d", c.MaxQuantity))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative, got %d", c.RateLimitPerMinute))
	}
	if c.ExplorerRateLimit < 0 {
		errs = append(errs, fmt.Errorf("EXPLORER_RATE_LIMIT cannot be negative, got %v", c.ExplorerRateLimit))
	}
	if _, err := networks.GetNetwork(c.Network); err != nil {
		errs = append(errs, fmt.Errorf("NETWORK: %w", err))
	}
	switch common.TotalScope(c.ListTotalScope) {
	case common.TotalAllOwners, common.TotalDisplayed:
	default:
		errs = append(errs, fmt.Errorf("LIST_TOTAL_SCOPE must be %q or %q, got %q", common.TotalAllOwners, common.TotalDisplayed, c.ListTotalScope))
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendMemory, store.BackendBadger:
	case store.BackendRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("REDIS_ADDR is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}
	return errors.Join(errs...)
}

func (c *Config) RequireAsset() error {
	if c.AssetID == "" {
		return fmt.Errorf("ASSET_ID is not configured")
	}
	return nil
}

func (c *Config) RequireTransfer() error {
	var errs []error
	if err := c.RequireAsset(); err != nil {
		errs = append(errs, err)
	}
	if c.ServerURL == "" {
		errs = append(errs, fmt.Errorf("SERVER_URL is not configured"))
	}
	if c.AssetFromAddress == "" {
		errs = append(errs, fmt.Errorf("ASSET_FROM_ADDRESS is not configured"))
	}
	return errors.Join(errs...)
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Store.Backend,
		Path:    c.Store.Path,
		Redis: store.RedisConfig{
			Addr:     c.Store.RedisAddr,
			Password: c.Store.RedisPassword,
			DB:       c.Store.RedisDB,
		},
	}
}

func (c *Config) CurrentNetwork() networks.Network {
	n, err := networks.GetNetwork(c.Network)
	if err != nil {
		return networks.Mainnet
	}
	return n
}
