package app

import (
	"context"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/clock"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/config"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/notify"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/otp"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/uid"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/validator"
)

// ServiceName identifies this job in logs and traces.
const ServiceName = "upstox-token-refresh"

// App wires dependencies and manages the lifecycle of one refresh run.
type App struct {
	// configuration
	config   config.Config
	settings *Settings
	ins      instrument.Instrumentation
	logClose func() error

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	totp      otp.OTP

	// resources
	notifier notify.Notifier

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App
// instance. Configuration failures here are fatal: a cron job with a broken
// environment has nothing useful left to do.
func New() *App {
	app := &App{}

	app.initConfig()
	app.initSettings()
	app.initLogging()
	app.initInstrument()
	app.initLibraries()
	app.initNotifier()
	app.initClosers()

	return app
}
