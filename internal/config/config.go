// Package config provides configuration management for the deploy tools.
// It loads settings from environment variables (after an optional .env
// file) and validates per-tool required variables with a fail-fast policy:
// the first missing variable aborts the run and is named in the error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmarkhas/renderdeploy-go/internal/errors"
	"github.com/dmarkhas/renderdeploy-go/internal/sliceutil"
)

// ValidationMode selects which variables are required.
type ValidationMode int

const (
	// DeployMode requires the Render API key (used by cmd/deploy).
	DeployMode ValidationMode = iota

	// SetupMode requires the bot credentials (used by cmd/setup).
	SetupMode

	// ProbeMode requires nothing (used by cmd/healthcheck and cmd/imagegen).
	ProbeMode
)

// requiredVars lists, in check order, the variables each mode insists on.
// Order matters: the first missing one is reported and the rest are not
// inspected.
var requiredVars = map[ValidationMode][]string{
	DeployMode: {EnvRenderAPIKey},
	SetupMode:  {EnvBotToken, EnvTelegramAPIID, EnvTelegramAPIHash},
	ProbeMode:  nil,
}

// Config holds all tool configuration.
type Config struct {
	// Render deployment
	RenderAPIKey    string
	RenderServiceID string // empty = create from blueprint
	BlueprintPath   string

	// Bot runtime values materialized into .env
	BotToken         string
	TelegramAPIID    string
	TelegramAPIHash  string
	AdminIDsRaw      string
	AdminIDs         []int64
	Port             string
	PythonUnbuffered string

	// Tool behavior
	LogLevel     string
	EnvFilePath  string
	WaitTimeout  time.Duration // terminal timeout for the readiness wait
	WaitFixed    time.Duration // legacy fixed-delay wait (0 = poll instead)
	MaxRetries   int
	RetryDelay   time.Duration
	StrictHealth bool
	HealthPath   string
	HistoryPath  string

	// Healthcheck probe
	HealthcheckURL     string
	HealthcheckTimeout time.Duration

	// Better Stack log shipping
	BetterStackToken    string
	BetterStackEndpoint string

	// Error reporting
	SentryToken       string
	SentryHost        string
	SentryEnvironment string

	// R2 manifest archive
	R2 R2Config
}

// R2Config holds the optional R2 archive settings.
type R2Config struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	ManifestPrefix  string
}

// Endpoint returns the R2 endpoint URL derived from the account ID.
func (r R2Config) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.AccountID)
}

// LoadForMode reads configuration from the environment for the given mode.
// It attempts to load a .env file first, then reads env vars.
//
// Required variables are checked against the process environment as it
// was BEFORE the .env load: the setup tool writes .env itself, so letting
// a previous run's file satisfy the precondition would disable the
// fail-fast check on every run but the first.
func LoadForMode(mode ValidationMode) (*Config, error) {
	processEnv := make(map[string]string, len(requiredVars[mode]))
	for _, key := range requiredVars[mode] {
		processEnv[key] = os.Getenv(key)
	}

	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		RenderAPIKey:    os.Getenv(EnvRenderAPIKey),
		RenderServiceID: os.Getenv(EnvRenderServiceID),
		BlueprintPath:   getEnv(EnvRenderBlueprint, "render.yaml"),

		BotToken:         os.Getenv(EnvBotToken),
		TelegramAPIID:    os.Getenv(EnvTelegramAPIID),
		TelegramAPIHash:  os.Getenv(EnvTelegramAPIHash),
		AdminIDsRaw:      os.Getenv(EnvAdminIDs),
		Port:             os.Getenv(EnvPort),
		PythonUnbuffered: os.Getenv(EnvPythonUnbuffered),

		LogLevel:     getEnv(EnvLogLevel, "info"),
		EnvFilePath:  getEnv(EnvEnvFile, ".env"),
		WaitTimeout:  getDurationEnv(EnvDeployWaitTimeout, 5*time.Minute),
		WaitFixed:    getDurationEnv(EnvDeployWaitFixed, 0),
		MaxRetries:   getIntEnv(EnvDeployMaxRetries, 10),
		RetryDelay:   getDurationEnv(EnvDeployRetryDelay, 4*time.Second),
		StrictHealth: getBoolEnv(EnvDeployStrictHealth, false),
		HealthPath:   getEnv(EnvDeployHealthPath, "/health"),
		HistoryPath:  getEnv(EnvDeployHistoryPath, "data/deploys.db"),

		HealthcheckURL:     os.Getenv(EnvHealthcheckURL),
		HealthcheckTimeout: getDurationEnv(EnvHealthcheckTimeout, 8*time.Second),

		BetterStackToken:    os.Getenv(EnvBetterStackToken),
		BetterStackEndpoint: os.Getenv(EnvBetterStackEndpoint),

		SentryToken:       os.Getenv(EnvSentryToken),
		SentryHost:        getEnv(EnvSentryHost, "errors.betterstack.com"),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),

		R2: R2Config{
			Enabled:         getBoolEnv(EnvR2Enabled, false),
			AccountID:       os.Getenv(EnvR2AccountID),
			AccessKeyID:     os.Getenv(EnvR2AccessKeyID),
			SecretAccessKey: os.Getenv(EnvR2SecretAccessKey),
			BucketName:      os.Getenv(EnvR2BucketName),
			ManifestPrefix:  getEnv(EnvR2ManifestPrefix, "deploys/"),
		},
	}

	cfg.AdminIDs = ParseAdminIDs(cfg.AdminIDsRaw)

	if err := cfg.validate(mode, processEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces the mode's required variables in order and sanity
// checks tool knobs. processEnv holds the pre-dotenv values of the
// required variables.
func (c *Config) validate(mode ValidationMode, processEnv map[string]string) error {
	for _, key := range requiredVars[mode] {
		if processEnv[key] == "" {
			return errors.NewMissingVar(key)
		}
	}

	if c.WaitTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %v", EnvDeployWaitTimeout, c.WaitTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%s cannot be negative, got %d", EnvDeployMaxRetries, c.MaxRetries)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("%s must be positive, got %v", EnvDeployRetryDelay, c.RetryDelay)
	}
	if mode == DeployMode && c.R2.Enabled {
		if c.R2.AccountID == "" || c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" || c.R2.BucketName == "" {
			return fmt.Errorf("R2 archive enabled but credentials are incomplete")
		}
	}
	return nil
}

// ParseAdminIDs parses a comma-separated list of Telegram user IDs.
// Blank and malformed entries are skipped; duplicates are removed while
// preserving order.
func ParseAdminIDs(raw string) []int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	ids := make([]int64, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return sliceutil.Deduplicate(ids, func(id int64) int64 { return id })
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
