package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level        string
    Pretty       bool
    File         string
    MaxSizeMB    int
    MaxBackups   int
    MaxAgeDays   int
    Compress     bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// ServerConfig defines the local UI server.
type ServerConfig struct {
    ListenAddr      string
    UploadDir       string
    UploadMaxAge    time.Duration
    ShutdownTimeout time.Duration
    WebUsername     string
    WebPassword     string
}

// ViewConfig defines the default viewport and output encoding.
type ViewConfig struct {
    ScreenWidth  int
    ScreenHeight int
    JPEGQuality  int
}

// Config is the top-level configuration.
type Config struct {
    Logging LoggingConfig
    Axiom   AxiomConfig
    Server  ServerConfig
    View    ViewConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    // Logging defaults
    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/pageselector.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    // Axiom defaults
    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_pageselector",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.Server = ServerConfig{
        ListenAddr:      getEnv("LISTEN_ADDR", "127.0.0.1:8080"),
        UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
        UploadMaxAge:    parseDuration(getEnv("UPLOAD_MAX_AGE", "24h"), 24*time.Hour),
        ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
        WebUsername:     getEnv("WEB_USERNAME", ""),
        WebPassword:     getEnv("WEB_PASSWORD", ""),
    }

    cfg.View = ViewConfig{
        ScreenWidth:  parseInt(getEnv("SCREEN_WIDTH", "1920"), 1920),
        ScreenHeight: parseInt(getEnv("SCREEN_HEIGHT", "1080"), 1080),
        JPEGQuality:  parseInt(getEnv("JPEG_QUALITY", "75"), 75),
    }
    if cfg.View.ScreenWidth <= 0 { cfg.View.ScreenWidth = 1920 }
    if cfg.View.ScreenHeight <= 0 { cfg.View.ScreenHeight = 1080 }
    if cfg.View.JPEGQuality < 1 || cfg.View.JPEGQuality > 100 { cfg.View.JPEGQuality = 75 }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
