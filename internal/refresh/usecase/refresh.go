package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/goerror"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/validator"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/entity"
	"github.com/samber/lo"
)

// Output summarizes a successful refresh for the caller's logs and alerts.
type Output struct {
	UserID    string
	UserName  string
	Email     string
	Broker    string
	UpdatedAt time.Time
	ExpiresAt time.Time
	// Modified is false when the upsert changed nothing, meaning the stored
	// token was already identical.
	Modified bool
}

// Refresh produces a fresh access token and durably records it exactly once.
//
// Every failure path attempts a best-effort alert before returning; the
// returned error's goerror type tells the caller which step gave up.
func (s *Usecase) Refresh(ctx context.Context) (*Output, error) {
	ctx, span := s.startSpan(ctx, "Refresh")
	defer span.End()

	if err := s.checkCredentials(ctx); err != nil {
		return nil, err
	}

	grant, err := s.acquireToken(ctx)
	if err != nil {
		return nil, err
	}

	return s.persistToken(ctx, grant)
}

// checkCredentials validates the brokerage credential set, enumerating the
// missing environment variables by name. Missing credentials abort the run
// but are reported, not process-fatal.
func (s *Usecase) checkCredentials(ctx context.Context) error {
	err := s.validator.Validate(s.creds)
	if err == nil {
		return nil
	}

	var fieldErrs validator.V10ValidationError
	if !errors.As(err, &fieldErrs) {
		slog.ErrorContext(ctx, "credential validation failed", "error", err)
		return goerror.NewServer(err)
	}

	missing := lo.Keys(fieldErrs.Values())
	sort.Strings(missing)

	slog.ErrorContext(ctx, "missing or invalid brokerage environment variables")
	for _, name := range missing {
		slog.ErrorContext(ctx, "  - "+name)
	}
	slog.InfoContext(ctx, "for Railway: set these under Project -> Settings -> Variables")
	slog.InfoContext(ctx, "for local testing: export them or use a .env file, e.g. UPSTOX_USERNAME=9876543210")

	s.alert(ctx, "Missing env vars: "+strings.Join(missing, ", "))

	return goerror.NewConfig("missing brokerage credentials", missing...)
}

// acquireToken builds the auth client and fetches the token, both exactly
// once. Neither step is retried: a failed login attempt may have consumed the
// TOTP window, and hammering the login endpoint risks an account lock.
func (s *Usecase) acquireToken(ctx context.Context) (*entity.TokenGrant, error) {
	slog.InfoContext(ctx, "initializing brokerage auth client")

	client, err := s.newAuth(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "auth client configuration failed", "error", err)
		s.alert(ctx, "Upstox config error: "+err.Error())
		return nil, err
	}

	slog.InfoContext(ctx, "generating new access token")

	res, err := client.GetAccessToken(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "token acquisition failed", "error", err)
		s.alert(ctx, "Upstox API error: "+err.Error())
		return nil, goerror.NewProvider("token acquisition failed", err)
	}

	if !res.Success || res.Data == nil {
		msg := res.Error
		if msg == "" {
			msg = "unknown error"
		}

		slog.ErrorContext(ctx, "token generation rejected", "reason", msg)
		s.alert(ctx, "Token generation failed: "+msg)
		return nil, goerror.NewProvider(msg, nil)
	}

	slog.InfoContext(ctx, "token generated",
		"user_name", res.Data.UserName,
		"upstox_user_id", res.Data.UserID,
		"broker", res.Data.Broker,
	)

	return res.Data, nil
}

// persistToken upserts the single token record. A write that changes nothing
// is a soft warning, not a failure: the token was already current.
func (s *Usecase) persistToken(ctx context.Context, grant *entity.TokenGrant) (*Output, error) {
	now := s.clock.Now().UTC()
	expiresAt := now.Add(entity.GrantValidity)

	rec := entity.AccessTokenRecord{
		Token:     grant.AccessToken,
		UserID:    grant.UserID,
		UserName:  grant.UserName,
		Email:     grant.Email,
		Broker:    grant.Broker,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
		Metadata: entity.RecordMetadata{
			Products:          grant.Products,
			Exchanges:         grant.Exchanges,
			IsActive:          grant.IsActive,
			LastRefreshSource: entity.RefreshSource,
			RailwayEnv:        s.railwayEnv,
		},
	}

	modified, err := s.store.UpsertAccessToken(ctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "token upsert failed", "error", err)
		s.alert(ctx, "MongoDB update failed: "+err.Error())
		return nil, goerror.NewPersistence(err, "token upsert failed")
	}

	if modified {
		slog.InfoContext(ctx, "token saved",
			"collection", "accesstokens",
			"expires_at", expiresAt.Format(time.DateTime)+" UTC",
		)
	} else {
		slog.WarnContext(ctx, "no document modified (token may be unchanged)")
	}

	return &Output{
		UserID:    grant.UserID,
		UserName:  grant.UserName,
		Email:     grant.Email,
		Broker:    grant.Broker,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
		Modified:  modified,
	}, nil
}
