package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/clock"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/config"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/notify"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/otp"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/uid"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/validator"
	libOTP "github.com/pquerna/otp"
)

func (a *App) initConfig() {
	a.config = config.NewEnv()
}

func (a *App) initSettings() {
	settings, err := loadSettings(a.config)
	if err != nil {
		slog.Error("failed to resolve settings", "error", err)
		slog.Error("set MONGO_URI or DATABASE_URL to the MongoDB connection string")
		os.Exit(1)
	}

	a.settings = settings
}

func (a *App) initLogging() {
	closeFn, err := instrument.InitLogging(instrument.LogConfig{
		ServiceName: ServiceName,
		FilePath:    a.settings.LogFile,
		MaskFields: []string{
			"password", "pin_code", "totp_secret", "client_secret",
			"access_token", "token", "bot_token",
		},
	})
	if err != nil {
		slog.Error("failed to init logging", "error", err)
		os.Exit(1)
	}

	a.logClose = closeFn
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:        a.settings.OTELEnabled,
		ServiceName:    ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    a.settings.RailwayEnv,
		OTLPEndpoint:   a.settings.OTELEndpoint,
		OTLPSecure:     a.settings.OTELSecure,
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}

	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.totp = otp.NewTOTP(0, 0, libOTP.DigitsSix)

	v10, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = v10
}

func (a *App) initNotifier() {
	tg, err := notify.NewTelegram(notify.TelegramConfig{
		BotToken: a.settings.TelegramBotToken,
		ChatID:   a.settings.TelegramChatID,
	})
	if err != nil {
		// Alerting is optional; a run without Telegram credentials still
		// refreshes the token, it just reports to logs only.
		slog.Info("telegram alerts disabled", "reason", err.Error())
		a.notifier = notify.NewNoop()

		return
	}

	a.notifier = tg
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
		{
			name: "LogFile",
			fn: func(context.Context) error {
				return a.logClose()
			},
		},
	}
}
