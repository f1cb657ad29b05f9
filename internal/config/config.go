package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/joho/godotenv"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
    LogFormat         string `json:"log_format"` // text|json
    LogLevel          string `json:"log_level"`
}

type Cache struct {
    LifetimeDays int    `json:"lifetime_days"`
    Backend      string `json:"backend"` // memory|bolt
    BoltPath     string `json:"bolt_path"`
}

type ScrapeSource struct {
    Enabled               bool   `json:"enabled"`
    Endpoint              string `json:"endpoint"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
}

type Brapi struct {
    Enabled               bool   `json:"enabled"`
    Endpoint              string `json:"endpoint"`
    Token                 string `json:"token"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
}

type Sources struct {
    // Priority is highest-first: the first listed source wins merge
    // conflicts for any field it provides.
    Priority     []string     `json:"priority"`
    TimeoutMS    int          `json:"timeout_ms"`
    StatusInvest ScrapeSource `json:"statusinvest"`
    Fundamentus  ScrapeSource `json:"fundamentus"`
    Brapi        Brapi        `json:"brapi"`
}

type Refresh struct {
    Enabled  bool     `json:"enabled"`
    CronSpec string   `json:"cron_spec"`
    Tickers  []string `json:"tickers"`
}

type Config struct {
    Server  Server  `json:"server"`
    Cache   Cache   `json:"cache"`
    Sources Sources `json:"sources"`
    Refresh Refresh `json:"refresh"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 30, LogFormat: "text", LogLevel: "info"},
        Cache:  Cache{LifetimeDays: 5, Backend: "memory", BoltPath: "tickerhub.db"},
        Sources: Sources{
            Priority:  []string{"statusinvest", "fundamentus", "brapi"},
            TimeoutMS: 15000,
            StatusInvest: ScrapeSource{
                Enabled:               true,
                Endpoint:              "https://statusinvest.com.br",
                MinRequestIntervalSec: 2,
            },
            Fundamentus: ScrapeSource{
                Enabled:               true,
                Endpoint:              "https://www.fundamentus.com.br",
                MinRequestIntervalSec: 2,
            },
            Brapi: Brapi{
                Enabled:              true,
                Endpoint:             "https://brapi.dev",
                MaxRequestsPerMinute: 10,
                Burst:                3,
            },
        },
        Refresh: Refresh{
            Enabled:  false,
            CronSpec: "0 30 11 * * 1-5", // weekdays, mid-morning market time
            Tickers:  nil,
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. A .env file is honored, and environment variables
// override select fields for secrecy.
func Load(path string) (Config, error) {
    _ = godotenv.Load() // missing .env is fine
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    if err := validate(&cfg); err != nil {
        return cfg, err
    }
    return cfg, nil
}

func validate(cfg *Config) error {
    switch cfg.Cache.Backend {
    case "memory", "bolt":
    default:
        return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
    }
    if cfg.Cache.LifetimeDays <= 0 {
        return fmt.Errorf("cache lifetime must be positive, got %d days", cfg.Cache.LifetimeDays)
    }
    if cfg.Sources.TimeoutMS <= 0 {
        return fmt.Errorf("source timeout must be positive, got %d ms", cfg.Sources.TimeoutMS)
    }
    return nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.Server.LogFormat = v }
    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Server.LogLevel = v }

    if v := os.Getenv("CACHE_LIFETIME_DAYS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Cache.LifetimeDays = x }
    }
    if v := os.Getenv("CACHE_BACKEND"); v != "" { cfg.Cache.Backend = v }
    if v := os.Getenv("CACHE_BOLT_PATH"); v != "" { cfg.Cache.BoltPath = v }

    if v := os.Getenv("SOURCE_PRIORITY"); v != "" { cfg.Sources.Priority = splitCSV(v) }
    if v := os.Getenv("SOURCE_TIMEOUT_MS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Sources.TimeoutMS = x }
    }
    if v := os.Getenv("STATUSINVEST_ENABLED"); v != "" { cfg.Sources.StatusInvest.Enabled = parseBool(v, cfg.Sources.StatusInvest.Enabled) }
    if v := os.Getenv("STATUSINVEST_ENDPOINT"); v != "" { cfg.Sources.StatusInvest.Endpoint = v }
    if v := os.Getenv("FUNDAMENTUS_ENABLED"); v != "" { cfg.Sources.Fundamentus.Enabled = parseBool(v, cfg.Sources.Fundamentus.Enabled) }
    if v := os.Getenv("FUNDAMENTUS_ENDPOINT"); v != "" { cfg.Sources.Fundamentus.Endpoint = v }
    if v := os.Getenv("BRAPI_ENABLED"); v != "" { cfg.Sources.Brapi.Enabled = parseBool(v, cfg.Sources.Brapi.Enabled) }
    if v := os.Getenv("BRAPI_ENDPOINT"); v != "" { cfg.Sources.Brapi.Endpoint = v }
    if v := os.Getenv("BRAPI_TOKEN"); v != "" { cfg.Sources.Brapi.Token = v }

    if v := os.Getenv("REFRESH_ENABLED"); v != "" { cfg.Refresh.Enabled = parseBool(v, cfg.Refresh.Enabled) }
    if v := os.Getenv("REFRESH_CRON"); v != "" { cfg.Refresh.CronSpec = v }
    if v := os.Getenv("REFRESH_TICKERS"); v != "" { cfg.Refresh.Tickers = splitCSV(v) }
}

func parseBool(v string, def bool) bool {
    switch strings.ToLower(v) {
    case "1", "true", "yes", "y":
        return true
    case "0", "false", "no", "n":
        return false
    }
    return def
}

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}
