package db

import (
	"context"
	"time"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// collectionName holds the single access-token document.
	collectionName = "accesstokens"

	// defaultDatabase is used when the connection URI carries no database path.
	defaultDatabase = "stock_alerts_db"

	serverSelectionTimeout = 10 * time.Second
	connectTimeout         = 15 * time.Second
	socketTimeout          = 15 * time.Second
)

// Store is the MongoDB-backed access-token store.
//
// The accesstokens collection is expected to hold at most one document; every
// write targets it with an empty filter. The store documents this invariant
// rather than enforcing it with an index, matching the consumers' expectation
// of a single well-known record.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	ins    instrument.Instrumentation
}

// NewStore wraps an established client. Used directly by tests; production
// code goes through Connect.
func NewStore(client *mongo.Client, database string, ins instrument.Instrumentation) *Store {
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
		ins:    ins,
	}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("refresh.outbound.db").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Close releases the underlying connection. Safe to call on every exit path.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
