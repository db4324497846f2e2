package db

import (
	"context"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertAccessToken replaces the single access-token document in place. The
// empty filter targets whatever document exists; with the single-document
// invariant that is always the deployment's record.
//
// The returned bool reports whether the write changed anything: false means
// the token was identical to the stored one, which callers treat as a soft
// warning rather than a failure.
func (s *Store) UpsertAccessToken(ctx context.Context, rec entity.AccessTokenRecord) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "UpsertAccessToken")
	defer func() { s.endSpan(span, err) }()

	res, err := s.coll.UpdateOne(ctx, bson.D{}, updateDocument(rec), options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}

	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

// updateDocument builds the $set payload for the upsert. _id is left to the
// server so an insert mints one and an update keeps the existing one.
func updateDocument(rec entity.AccessTokenRecord) bson.M {
	return bson.M{
		"$set": bson.M{
			"token":      rec.Token,
			"user_id":    rec.UserID,
			"user_name":  rec.UserName,
			"email":      rec.Email,
			"broker":     rec.Broker,
			"updated_at": rec.UpdatedAt,
			"expires_at": rec.ExpiresAt,
			"metadata": bson.M{
				"products":            rec.Metadata.Products,
				"exchanges":           rec.Metadata.Exchanges,
				"is_active":           rec.Metadata.IsActive,
				"last_refresh_source": rec.Metadata.LastRefreshSource,
				"railway_env":         rec.Metadata.RailwayEnv,
			},
		},
	}
}
