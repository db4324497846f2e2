package app

import (
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/config"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/goerror"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/entity"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/outbound/upstox"
)

// Environment variable names forming the configuration surface.
const (
	envMongoURI    = "MONGO_URI"
	envDatabaseURL = "DATABASE_URL"

	envUpstoxUsername     = "UPSTOX_USERNAME"
	envUpstoxPassword     = "UPSTOX_PASSWORD"
	envUpstoxPinCode      = "UPSTOX_PIN_CODE"
	envUpstoxTOTPSecret   = "UPSTOX_TOTP_SECRET"
	envUpstoxClientID     = "UPSTOX_CLIENT_ID"
	envUpstoxClientSecret = "UPSTOX_CLIENT_SECRET"
	envUpstoxRedirectURI  = "UPSTOX_REDIRECT_URI"

	envTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	envTelegramChatID   = "ADMIN_TELEGRAM_CHAT_ID"

	envRailwayEnvironment = "RAILWAY_ENVIRONMENT"
	envRailwayServiceName = "RAILWAY_SERVICE_NAME"
	envSendSuccessAlerts  = "SEND_SUCCESS_ALERTS"
	envLogFile            = "LOG_FILE"

	envOTELEnabled  = "OTEL_ENABLED"
	envOTELEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTELSecure   = "OTEL_EXPORTER_OTLP_SECURE"
)

const defaultLogFile = "logs/token_refresh.log"

// Settings is the immutable environment-driven configuration, resolved once
// at startup and passed into the run.
type Settings struct {
	MongoURI          string
	Credentials       entity.Credentials
	TelegramBotToken  string
	TelegramChatID    string
	RailwayEnv        string
	RailwayService    string
	SendSuccessAlerts bool
	LogFile           string
	OTELEnabled       bool
	OTELEndpoint      string
	OTELSecure        bool
}

// loadSettings resolves Settings from the environment. Only the database URI
// is checked here and is fatal when absent; the brokerage credential subset is
// validated inside the run so its absence can still be reported through the
// alert channel.
func loadSettings(cfg config.Config) (*Settings, error) {
	uri := cfg.GetString(envMongoURI)
	if uri == "" {
		uri = cfg.GetString(envDatabaseURL)
	}
	if uri == "" {
		return nil, goerror.NewConfig(
			"database connection string not set",
			envMongoURI, envDatabaseURL,
		)
	}

	railwayEnv := cfg.GetString(envRailwayEnvironment)
	if railwayEnv == "" {
		railwayEnv = "local"
	}

	redirectURI := cfg.GetString(envUpstoxRedirectURI)
	if redirectURI == "" {
		redirectURI = upstox.DefaultRedirectURI
	}

	logFile := cfg.GetString(envLogFile)
	if logFile == "" {
		logFile = defaultLogFile
	}

	return &Settings{
		MongoURI: uri,
		Credentials: entity.Credentials{
			Username:     cfg.GetString(envUpstoxUsername),
			Password:     cfg.GetString(envUpstoxPassword),
			PinCode:      cfg.GetString(envUpstoxPinCode),
			TOTPSecret:   cfg.GetString(envUpstoxTOTPSecret),
			ClientID:     cfg.GetString(envUpstoxClientID),
			ClientSecret: cfg.GetString(envUpstoxClientSecret),
			RedirectURI:  redirectURI,
		},
		TelegramBotToken:  cfg.GetString(envTelegramBotToken),
		TelegramChatID:    cfg.GetString(envTelegramChatID),
		RailwayEnv:        railwayEnv,
		RailwayService:    cfg.GetString(envRailwayServiceName),
		SendSuccessAlerts: cfg.GetBool(envSendSuccessAlerts),
		LogFile:           logFile,
		OTELEnabled:       cfg.GetBool(envOTELEnabled),
		OTELEndpoint:      cfg.GetString(envOTELEndpoint),
		OTELSecure:        cfg.GetBool(envOTELSecure),
	}, nil
}
