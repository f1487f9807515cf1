// Package config defines environment variable keys for configuration.
package config

const (
	// Render deployment (deploy tool)
	EnvRenderAPIKey    = "RENDER_API_KEY"
	EnvRenderServiceID = "RENDER_SERVICE_ID"
	EnvRenderBlueprint = "RENDER_BLUEPRINT"

	// Bot runtime (setup tool, materialized into .env)
	EnvBotToken         = "BOT_TOKEN"
	EnvTelegramAPIID    = "TELEGRAM_API_ID"
	EnvTelegramAPIHash  = "TELEGRAM_API_HASH"
	EnvAdminIDs         = "ADMIN_IDS"
	EnvPort             = "PORT"
	EnvPythonUnbuffered = "PYTHONUNBUFFERED"

	// Tool behavior
	EnvLogLevel           = "LOG_LEVEL"
	EnvEnvFile            = "ENV_FILE"
	EnvDeployWaitTimeout  = "DEPLOY_WAIT_TIMEOUT"
	EnvDeployWaitFixed    = "DEPLOY_WAIT_FIXED"
	EnvDeployMaxRetries   = "DEPLOY_MAX_RETRIES"
	EnvDeployRetryDelay   = "DEPLOY_RETRY_DELAY"
	EnvDeployStrictHealth = "DEPLOY_STRICT_HEALTH"
	EnvDeployHealthPath   = "DEPLOY_HEALTH_PATH"
	EnvDeployHistoryPath  = "DEPLOY_HISTORY_PATH"

	// Healthcheck probe
	EnvHealthcheckURL     = "HEALTHCHECK_URL"
	EnvHealthcheckTimeout = "HEALTHCHECK_TIMEOUT"

	// Better Stack log shipping
	EnvBetterStackToken    = "BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "BETTERSTACK_ENDPOINT"

	// Error reporting (Sentry protocol, Better Stack errors ingest)
	EnvSentryToken       = "SENTRY_TOKEN"
	EnvSentryHost        = "SENTRY_HOST"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"

	// R2 manifest archive
	EnvR2Enabled         = "R2_ENABLED"
	EnvR2AccountID       = "R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "R2_BUCKET_NAME"
	EnvR2ManifestPrefix  = "R2_MANIFEST_PREFIX"
)
