package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/outbound/db"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/outbound/upstox"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/usecase"
)

const banner = "======================================================================"

// Run executes one refresh cycle and returns the process exit code: 0 when a
// token was produced and durably recorded, 1 otherwise.
func (a *App) Run(ctx context.Context) int {
	start := a.clock.Now()
	ctx = instrument.WithRunID(ctx, a.uuid.Generate())

	defer a.close(ctx)

	slog.InfoContext(ctx, banner)
	slog.InfoContext(ctx, "🚀 upstox token refresh started",
		"started_at", start.UTC().Format("2006-01-02 15:04:05")+" UTC",
		"railway_env", a.settings.RailwayEnv,
		"railway_service", a.settings.RailwayService,
		"platform", runtime.GOOS,
	)
	slog.InfoContext(ctx, banner)

	slog.InfoContext(ctx, "🔌 connecting to mongodb",
		"uri", redactURI(a.settings.MongoURI),
		"database", db.DatabaseName(a.settings.MongoURI),
	)

	store, err := db.Connect(ctx, a.settings.MongoURI, a.ins)
	if err != nil {
		slog.ErrorContext(ctx, "❌ database connection failed", "error", err)
		a.alert(ctx, "MongoDB connection failed after 3 retries")

		return a.finish(ctx, 1)
	}

	defer func() {
		if err := store.Close(ctx); err != nil {
			slog.WarnContext(ctx, "failed to close database connection", "error", err)
		}
	}()

	slog.InfoContext(ctx, "✅ mongodb connected")

	uc := usecase.New(usecase.Dependency{
		Store: store,
		NewAuth: func(ctx context.Context) (usecase.AuthClient, error) {
			return upstox.NewClient(upstox.Config{
				Credentials: a.settings.Credentials,
				OTP:         a.totp,
				Clock:       a.clock,
				Instrument:  a.ins,
			})
		},
		Notifier:    a.notifier,
		Validator:   a.validator,
		Clock:       a.clock,
		Instrument:  a.ins,
		Credentials: a.settings.Credentials,
		RailwayEnv:  a.settings.RailwayEnv,
	})

	out, err := uc.Refresh(ctx)
	if err != nil {
		return a.finish(ctx, 1)
	}

	elapsed := a.clock.Now().Sub(start)

	slog.InfoContext(ctx, banner)
	slog.InfoContext(ctx, "🎉 token refresh completed",
		"user_name", out.UserName,
		"broker", out.Broker,
		"expires_at", out.ExpiresAt.Format("2006-01-02 15:04:05")+" UTC",
		"execution_seconds", fmt.Sprintf("%.1f", elapsed.Seconds()),
	)
	slog.InfoContext(ctx, banner)

	if a.settings.SendSuccessAlerts {
		a.alert(ctx, fmt.Sprintf("Token refreshed successfully in %.1fs", elapsed.Seconds()))
	}

	return a.finish(ctx, 0)
}

// alert pushes a best-effort notification. Delivery failures are logged and
// never change the exit code.
func (a *App) alert(ctx context.Context, text string) {
	if err := a.notifier.Notify(ctx, text); err != nil {
		slog.WarnContext(ctx, "failed to send alert", "error", err)
	}
}

func (a *App) finish(ctx context.Context, code int) int {
	slog.InfoContext(ctx, "👋 exiting", "code", code)

	return code
}

func (a *App) close(ctx context.Context) {
	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			// The log file closer may run after its own sink is gone; stdout
			// still receives the line.
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}

// redactURI strips userinfo from a connection URI for logging.
func redactURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}

	scheme := ""
	if i := strings.Index(uri, "://"); i >= 0 {
		scheme = uri[:i+3]
	}

	return scheme + "***" + uri[at:]
}
