package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Common holds settings every command shares.
type Common struct {
	RPCURL string
	// ChainID is checked against the node; 0 adopts whatever the node reports.
	ChainID        uint64
	LogLevel       string
	MaxRetries     int
	RetryBackoff   time.Duration
	CoinsURL       string
	YieldsURL      string
	EnsoURL        string
	EnsoAPIKey     string
	HTTPTimeout    time.Duration
	ScanMultiplier int
	TickBatchSize  int
}

// SimulateConfig holds configuration for the simulate command.
type SimulateConfig struct {
	Common
	Pool          string
	InvestmentUSD float64
	TickLower     int32
	TickUpper     int32
	DurationDays  int
	Volatility    float64
	Out           string
}

// HistogramConfig holds configuration for the histogram command.
type HistogramConfig struct {
	Common
	Pool    string
	Buckets int
}

// ScanConfig holds configuration for the scan command. An empty Pools list
// means the curated default set.
type ScanConfig struct {
	Common
	Pools     []string
	Workers   int
	MinTVLUSD float64
	Out       string
	PGDSN     string
}

// ServeConfig holds configuration for the serve command. Pools is the set
// behind the listing and analysis routes; empty means the curated default set.
type ServeConfig struct {
	Common
	Addr          string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Out           string
	PGDSN         string
	Pools         []string
	Workers       int
	BuildTimeout  time.Duration
}

// load merges config file, environment variables, and flags.
func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AEROSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", uint64(0))
	v.SetDefault("log-level", "info")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)
	v.SetDefault("coins-url", "https://coins.llama.fi")
	v.SetDefault("yields-url", "https://yields.llama.fi")
	v.SetDefault("enso-url", "https://api.enso.finance/api/v1")
	v.SetDefault("http-timeout", 15*time.Second)
	v.SetDefault("scan-multiplier", 2)
	v.SetDefault("tick-batch-size", 20)
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func commonFrom(v *viper.Viper) Common {
	return Common{
		RPCURL:         v.GetString("rpc"),
		ChainID:        v.GetUint64("chain-id"),
		LogLevel:       v.GetString("log-level"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		CoinsURL:       v.GetString("coins-url"),
		YieldsURL:      v.GetString("yields-url"),
		EnsoURL:        v.GetString("enso-url"),
		EnsoAPIKey:     v.GetString("enso-api-key"),
		HTTPTimeout:    v.GetDuration("http-timeout"),
		ScanMultiplier: v.GetInt("scan-multiplier"),
		TickBatchSize:  v.GetInt("tick-batch-size"),
	}
}

func (c Common) validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max-retries must be at least 1")
	}
	return nil
}

func validatePool(pool string) error {
	if pool == "" {
		return fmt.Errorf("pool address is required")
	}
	if !addressPattern.MatchString(pool) {
		return fmt.Errorf("invalid pool address %q", pool)
	}
	return nil
}

func validatePools(pools []string) error {
	for _, p := range pools {
		if err := validatePool(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadSimulate merges config file, environment variables, and flags into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"duration-days": 30,
	})
	if err != nil {
		return SimulateConfig{}, err
	}
	cfg := SimulateConfig{
		Common:        commonFrom(v),
		Pool:          v.GetString("pool"),
		InvestmentUSD: v.GetFloat64("investment"),
		TickLower:     v.GetInt32("tick-lower"),
		TickUpper:     v.GetInt32("tick-upper"),
		DurationDays:  v.GetInt("duration-days"),
		Volatility:    v.GetFloat64("volatility"),
		Out:           v.GetString("out"),
	}
	if err := cfg.validate(); err != nil {
		return SimulateConfig{}, err
	}
	if err := validatePool(cfg.Pool); err != nil {
		return SimulateConfig{}, err
	}
	return cfg, nil
}

// LoadHistogram merges config file, environment variables, and flags into HistogramConfig.
func LoadHistogram(cfgFile string, flags *pflag.FlagSet) (HistogramConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"buckets": 50,
	})
	if err != nil {
		return HistogramConfig{}, err
	}
	cfg := HistogramConfig{
		Common:  commonFrom(v),
		Pool:    v.GetString("pool"),
		Buckets: v.GetInt("buckets"),
	}
	if err := cfg.validate(); err != nil {
		return HistogramConfig{}, err
	}
	if err := validatePool(cfg.Pool); err != nil {
		return HistogramConfig{}, err
	}
	if cfg.Buckets <= 0 {
		return HistogramConfig{}, fmt.Errorf("buckets must be positive")
	}
	return cfg, nil
}

// LoadScan merges config file, environment variables, and flags into ScanConfig.
func LoadScan(cfgFile string, flags *pflag.FlagSet) (ScanConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"workers":     8,
		"min-tvl-usd": 1000.0,
		"out":         "./data/pools.jsonl",
	})
	if err != nil {
		return ScanConfig{}, err
	}
	cfg := ScanConfig{
		Common:    commonFrom(v),
		Pools:     getStringSlice(v, "pools"),
		Workers:   v.GetInt("workers"),
		MinTVLUSD: v.GetFloat64("min-tvl-usd"),
		Out:       v.GetString("out"),
		PGDSN:     v.GetString("pg-dsn"),
	}
	if err := cfg.validate(); err != nil {
		return ScanConfig{}, err
	}
	if err := validatePools(cfg.Pools); err != nil {
		return ScanConfig{}, err
	}
	return cfg, nil
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"addr":          ":8080",
		"cache-ttl":     2 * time.Minute,
		"redis-db":      0,
		"workers":       8,
		"build-timeout": 30 * time.Second,
	})
	if err != nil {
		return ServeConfig{}, err
	}
	cfg := ServeConfig{
		Common:        commonFrom(v),
		Addr:          v.GetString("addr"),
		CacheTTL:      v.GetDuration("cache-ttl"),
		RedisAddr:     v.GetString("redis-addr"),
		RedisPassword: v.GetString("redis-password"),
		RedisDB:       v.GetInt("redis-db"),
		Out:           v.GetString("out"),
		PGDSN:         v.GetString("pg-dsn"),
		Pools:         getStringSlice(v, "pools"),
		Workers:       v.GetInt("workers"),
		BuildTimeout:  v.GetDuration("build-timeout"),
	}
	if err := cfg.validate(); err != nil {
		return ServeConfig{}, err
	}
	if err := validatePools(cfg.Pools); err != nil {
		return ServeConfig{}, err
	}
	if cfg.Workers <= 0 {
		return ServeConfig{}, fmt.Errorf("workers must be positive")
	}
	if cfg.CacheTTL <= 0 {
		return ServeConfig{}, fmt.Errorf("cache-ttl must be positive")
	}
	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
