package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GrantValidity is how long a freshly issued access token is advertised as
// usable. Upstox tokens expire at 03:30 IST the next day; 23h30m keeps the
// recorded expiry safely inside that window for a daily refresh.
const GrantValidity = 23*time.Hour + 30*time.Minute

// RefreshSource tags records written by this job so downstream services can
// tell scheduled refreshes from manual ones.
const RefreshSource = "railway_cron"

// TokenGrant is the identity-bearing payload returned by a successful
// brokerage login.
type TokenGrant struct {
	AccessToken string
	UserID      string
	UserName    string
	Email       string
	Broker      string
	Products    []string
	Exchanges   []string
	IsActive    bool
}

// TokenResult is the outcome envelope of a token acquisition attempt.
//
// Success without Data is still a failure: the job needs the payload, not just
// a 200 from the provider.
type TokenResult struct {
	Success bool
	Data    *TokenGrant
	Error   string
}

// AccessTokenRecord is the single persisted document. One per deployment,
// upserted in place; each successful run replaces it wholesale.
type AccessTokenRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	UserID    string             `bson:"user_id"`
	UserName  string             `bson:"user_name"`
	Email     string             `bson:"email"`
	Broker    string             `bson:"broker"`
	UpdatedAt time.Time          `bson:"updated_at"`
	ExpiresAt time.Time          `bson:"expires_at"`
	Metadata  RecordMetadata     `bson:"metadata"`
}

// RecordMetadata carries provider-supplied account attributes stored verbatim
// plus the refresh provenance tags.
type RecordMetadata struct {
	Products          []string `bson:"products"`
	Exchanges         []string `bson:"exchanges"`
	IsActive          bool     `bson:"is_active"`
	LastRefreshSource string   `bson:"last_refresh_source"`
	RailwayEnv        string   `bson:"railway_env"`
}
