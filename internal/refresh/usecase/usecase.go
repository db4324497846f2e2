package usecase

import (
	"context"
	"log/slog"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/clock"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/notify"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/validator"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/entity"
	"go.opentelemetry.io/otel/trace"
)

type tokenStore interface {
	UpsertAccessToken(ctx context.Context, rec entity.AccessTokenRecord) (bool, error)
}

// AuthClient is the authenticated brokerage session produced by AuthBuilder.
type AuthClient interface {
	GetAccessToken(ctx context.Context) (*entity.TokenResult, error)
}

// AuthBuilder constructs the brokerage client from the resolved credentials.
// Construction is attempted once per run and never retried.
type AuthBuilder func(ctx context.Context) (AuthClient, error)

// Usecase orchestrates one token refresh: credential check, token
// acquisition, persistence, and best-effort alerting.
type Usecase struct {
	store      tokenStore
	newAuth    AuthBuilder
	notifier   notify.Notifier
	validator  validator.Validator
	clock      clock.Clocker
	ins        instrument.Instrumentation
	creds      entity.Credentials
	railwayEnv string
}

// Dependency lists everything the use case needs.
type Dependency struct {
	Store      tokenStore
	NewAuth    AuthBuilder
	Notifier   notify.Notifier
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	// Credentials is the brokerage credential set from the environment.
	Credentials entity.Credentials
	// RailwayEnv is the deployment environment label stored in metadata.
	RailwayEnv string
}

// New wires a Usecase.
func New(dep Dependency) *Usecase {
	notifier := dep.Notifier
	if notifier == nil {
		notifier = notify.NewNoop()
	}

	return &Usecase{
		store:      dep.Store,
		newAuth:    dep.NewAuth,
		notifier:   notifier,
		validator:  dep.Validator,
		clock:      dep.Clock,
		ins:        dep.Instrument,
		creds:      dep.Credentials,
		railwayEnv: dep.RailwayEnv,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("refresh.usecase").Start(ctx, name)
}

// alert pushes a best-effort notification. Delivery failures are logged as
// warnings and never escalate; the alert channel must not decide job outcome.
func (s *Usecase) alert(ctx context.Context, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		slog.WarnContext(ctx, "failed to send alert", "error", err)
	}
}
