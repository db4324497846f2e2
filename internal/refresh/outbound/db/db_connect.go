package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/goerror"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// maxConnectAttempts is the total number of connection attempts. Retries are
// immediate: the per-attempt timeouts already bound how long each try takes.
const maxConnectAttempts = 3

// conn is the slice of mongo.Client behavior the retry loop needs; tests
// substitute a fake.
type conn interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
}

type dialFunc func(ctx context.Context) (conn, error)

// Connect establishes a verified MongoDB connection with up to 3 attempts and
// returns a Store bound to the database named in the URI.
func Connect(ctx context.Context, uri string, ins instrument.Instrumentation) (*Store, error) {
	var client *mongo.Client

	dial := func(ctx context.Context) (conn, error) {
		opts := options.Client().
			ApplyURI(uri).
			SetServerSelectionTimeout(serverSelectionTimeout).
			SetConnectTimeout(connectTimeout).
			SetSocketTimeout(socketTimeout).
			SetMaxPoolSize(1)

		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}

		client = c
		return c, nil
	}

	if _, err := connectWithRetry(ctx, dial); err != nil {
		return nil, err
	}

	return NewStore(client, DatabaseName(uri), ins), nil
}

// connectWithRetry dials and pings until a connection is verified or the
// attempt budget is exhausted. Each failed attempt is logged with its number.
func connectWithRetry(ctx context.Context, dial dialFunc) (conn, error) {
	var (
		verified conn
		attempt  int
	)

	backoff := retry.WithMaxRetries(maxConnectAttempts-1, retry.NewConstant(time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		c, err := dial(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "database connection attempt failed",
				"attempt", attempt, "max_attempts", maxConnectAttempts, "error", err)
			return retry.RetryableError(err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
		defer cancel()

		if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
			slog.ErrorContext(ctx, "database liveness check failed",
				"attempt", attempt, "max_attempts", maxConnectAttempts, "error", err)

			//nolint:errcheck // the connection is already unusable
			c.Disconnect(ctx)
			return retry.RetryableError(err)
		}

		verified = c
		return nil
	})
	if err != nil {
		return nil, goerror.NewTransient(err, "database connection failed after retries")
	}

	return verified, nil
}

// DatabaseName extracts the database from a MongoDB connection URI, falling
// back to the deployment default when the URI carries no path.
func DatabaseName(uri string) string {
	if uri == "" {
		return defaultDatabase
	}

	tail := uri[strings.LastIndex(uri, "/")+1:]
	if i := strings.Index(tail, "?"); i >= 0 {
		tail = tail[:i]
	}

	if tail == "" || strings.Contains(tail, "@") || strings.Contains(tail, ":") {
		return defaultDatabase
	}

	return tail
}
