// Package config loads application configuration from baseDir/config.json
// with environment overrides for secrets and tunables.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds application configuration.
//
// All pacing parameters are configuration values rather than client
// constants so they can be tuned per provider plan tier without code
// changes.
type Config struct {
	// XBearerToken authenticates against the X API v2.
	XBearerToken string `json:"x_bearer_token,omitempty"`

	// OpenAI settings for the daily summarizer.
	OpenAIAPIKey   string `json:"openai_api_key,omitempty"`
	OpenAIModel    string `json:"openai_model,omitempty"`
	OpenAIEndpoint string `json:"openai_endpoint,omitempty"`

	// Telegram notification settings.
	TelegramBotToken string `json:"telegram_bot_token,omitempty"`
	TelegramChatID   string `json:"telegram_chat_id,omitempty"`

	// Email (SMTP) notification settings.
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUser     string `json:"smtp_user,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`
	EmailTo      string `json:"email_to,omitempty"`

	// Daily schedule (UTC) for serve mode.
	SummaryHour   int `json:"summary_hour"`
	SummaryMinute int `json:"summary_minute"`

	// Pacing: delay between per-account requests, batch size before a
	// longer cool-down, and the cool-down itself. SettleDelaySeconds is
	// the short pause between an identity lookup and the content call
	// for the same account.
	FetchDelaySeconds  int `json:"fetch_delay_seconds,omitempty"`
	BatchSize          int `json:"batch_size,omitempty"`
	BatchDelaySeconds  int `json:"batch_delay_seconds,omitempty"`
	SettleDelaySeconds int `json:"settle_delay_seconds,omitempty"`

	// BootstrapHours is the default lookback when an account has no
	// persisted tweets yet, and the width of the window read.
	BootstrapHours int `json:"bootstrap_hours,omitempty"`

	// PageSize caps tweets per fetch request (provider max 100).
	PageSize int `json:"page_size,omitempty"`

	// QuotaPolicy selects the quota-exceeded strategy: "skip" abandons
	// the account for this cycle, "retry" backs off and retries.
	QuotaPolicy      string `json:"quota_policy,omitempty"`
	RetryMaxAttempts int    `json:"retry_max_attempts,omitempty"`
	RetryBaseSeconds int    `json:"retry_base_seconds,omitempty"`

	// StarvationThreshold is how many consecutive failed cycles an
	// account tolerates before the run flags it as starved.
	StarvationThreshold int `json:"starvation_threshold,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OpenAIModel:         "gpt-4o-mini",
		OpenAIEndpoint:      "https://api.openai.com/v1/chat/completions",
		SMTPHost:            "smtp.gmail.com",
		SMTPPort:            587,
		SummaryHour:         8,
		SummaryMinute:       0,
		FetchDelaySeconds:   2,
		BatchSize:           5,
		BatchDelaySeconds:   30,
		SettleDelaySeconds:  1,
		BootstrapHours:      24,
		PageSize:            100,
		QuotaPolicy:         "skip",
		RetryMaxAttempts:    3,
		RetryBaseSeconds:    5,
		StarvationThreshold: 5,
		LogLevel:            "info",
	}
}

// Load reads baseDir/config.json (if present), merges it over the
// defaults, and applies environment overrides. The baseDir parameter
// allows tests to use t.TempDir() instead of ~/.birdwatch.
func Load(baseDir string) (*Config, error) {
	overlay, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	cfg := Merge(DefaultConfig(), overlay)
	cfg.applyEnvOverrides()
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs; overlay values win when set.
func Merge(base, overlay *Config) *Config {
	result := *base

	overrideString(&result.XBearerToken, overlay.XBearerToken)
	overrideString(&result.OpenAIAPIKey, overlay.OpenAIAPIKey)
	overrideString(&result.OpenAIModel, overlay.OpenAIModel)
	overrideString(&result.OpenAIEndpoint, overlay.OpenAIEndpoint)
	overrideString(&result.TelegramBotToken, overlay.TelegramBotToken)
	overrideString(&result.TelegramChatID, overlay.TelegramChatID)
	overrideString(&result.SMTPHost, overlay.SMTPHost)
	overrideString(&result.SMTPUser, overlay.SMTPUser)
	overrideString(&result.SMTPPassword, overlay.SMTPPassword)
	overrideString(&result.EmailTo, overlay.EmailTo)
	overrideString(&result.QuotaPolicy, overlay.QuotaPolicy)
	overrideString(&result.LogLevel, overlay.LogLevel)

	overrideInt(&result.SMTPPort, overlay.SMTPPort)
	overrideInt(&result.SummaryHour, overlay.SummaryHour)
	overrideInt(&result.SummaryMinute, overlay.SummaryMinute)
	overrideInt(&result.FetchDelaySeconds, overlay.FetchDelaySeconds)
	overrideInt(&result.BatchSize, overlay.BatchSize)
	overrideInt(&result.BatchDelaySeconds, overlay.BatchDelaySeconds)
	overrideInt(&result.SettleDelaySeconds, overlay.SettleDelaySeconds)
	overrideInt(&result.BootstrapHours, overlay.BootstrapHours)
	overrideInt(&result.PageSize, overlay.PageSize)
	overrideInt(&result.RetryMaxAttempts, overlay.RetryMaxAttempts)
	overrideInt(&result.RetryBaseSeconds, overlay.RetryBaseSeconds)
	overrideInt(&result.StarvationThreshold, overlay.StarvationThreshold)

	return &result
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// applyEnvOverrides lets environment variables (typically from .env)
// take precedence over the config file.
func (c *Config) applyEnvOverrides() {
	envString(&c.XBearerToken, "X_BEARER_TOKEN")
	envString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	envString(&c.OpenAIModel, "OPENAI_MODEL")
	envString(&c.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	envString(&c.TelegramChatID, "TELEGRAM_CHAT_ID")
	envString(&c.SMTPHost, "SMTP_HOST")
	envString(&c.SMTPUser, "SMTP_USER")
	envString(&c.SMTPPassword, "SMTP_PASSWORD")
	envString(&c.EmailTo, "EMAIL_TO")
	envString(&c.QuotaPolicy, "BIRDWATCH_QUOTA_POLICY")
	envString(&c.LogLevel, "BIRDWATCH_LOG_LEVEL")

	envInt(&c.SMTPPort, "SMTP_PORT")
	envInt(&c.FetchDelaySeconds, "BIRDWATCH_FETCH_DELAY")
	envInt(&c.BatchSize, "BIRDWATCH_BATCH_SIZE")
	envInt(&c.BatchDelaySeconds, "BIRDWATCH_BATCH_DELAY")
	envInt(&c.BootstrapHours, "BIRDWATCH_BOOTSTRAP_HOURS")
	envInt(&c.PageSize, "BIRDWATCH_PAGE_SIZE")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// FetchDelay is the pause between consecutive per-account requests.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelaySeconds) * time.Second
}

// BatchDelay is the cool-down after every BatchSize accounts.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelaySeconds) * time.Second
}

// SettleDelay is the pause between an identity lookup and the content
// call for the same account.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySeconds) * time.Second
}

// RetryBase is the initial backoff for the retry quota policy.
func (c *Config) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseSeconds) * time.Second
}

// Bootstrap is the default lookback window for never-fetched accounts.
func (c *Config) Bootstrap() time.Duration {
	return time.Duration(c.BootstrapHours) * time.Hour
}

// TelegramEnabled reports whether Telegram notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// EmailEnabled reports whether email notifications are configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPassword != "" && c.EmailTo != ""
}
