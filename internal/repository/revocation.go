package repository

// revocation.go implements the access-token revocation set on Redis.
// Every request handler shares the same Redis-backed set, so revocation
// is consistent across any number of stateless server instances.  Keys
// expire together with the token they revoke, which keeps the set
// bounded by the access-token TTL.

import (
    "context"
    "time"

    "github.com/redis/go-redis/v9"
)

// RevocationStore records access-token ids (jti claims) that were
// invalidated before their natural expiry.  A nil *RevocationStore is a
// valid no-op store: IsRevoked always reports false and Revoke reports
// that nothing was recorded.  That is the fallback mode when Redis is
// unavailable: logout degrades to refresh-token revocation plus
// client-side discard of the access token.
type RevocationStore struct {
    rdb    *redis.Client
    prefix string
}

// NewRevocationStore returns a store bound to the given Redis client, or
// nil when the client is nil.
func NewRevocationStore(rdb *redis.Client) *RevocationStore {
    if rdb == nil {
        return nil
    }
    return &RevocationStore{rdb: rdb, prefix: "revoked:"}
}

// Revoke adds a token id to the set with a TTL equal to the token's
// remaining lifetime.  Revoking an already revoked token is a no-op, not
// an error.  The boolean reports whether the revocation was actually
// recorded; false means the store is absent and the caller may want to
// note the degraded logout.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
    if s == nil || s.rdb == nil {
        return false, nil
    }
    if ttl <= 0 {
        // Token already expired on its own; nothing to record.
        return true, nil
    }
    if err := s.rdb.Set(ctx, s.prefix+tokenID, 1, ttl).Err(); err != nil {
        return false, err
    }
    return true, nil
}

// IsRevoked reports whether a token id is present in the set.  Errors
// from Redis are returned so the middleware can decide whether to fail
// closed; an absent store reports not revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
    if s == nil || s.rdb == nil {
        return false, nil
    }
    n, err := s.rdb.Exists(ctx, s.prefix+tokenID).Result()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}
