package organization

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mdhub/internal/constants"
	"mdhub/internal/logger"
)

// CachedResolver decorates a Resolver with a redis read-through cache.
// Client-to-organization bindings change rarely, so a short TTL removes a
// collaborator round trip from the hot ingestion path without risking stale
// redaction scoping for long.
type CachedResolver struct {
	next   Resolver
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedResolver(next Resolver, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = constants.DefaultOrganizationCacheTTL
	}
	return &CachedResolver{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (r *CachedResolver) Resolve(ctx context.Context, clientID string) (*Organization, error) {
	key := constants.CacheKeyPrefixOrganization + clientID

	val, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var org Organization
		if jsonErr := json.Unmarshal([]byte(val), &org); jsonErr == nil {
			return &org, nil
		}
	} else if err != redis.Nil {
		r.logger.WarnwCtx(ctx, "Organization cache read failed, falling through",
			"client_id", clientID,
			"error", err,
		)
	}

	org, err := r.next.Resolve(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(org); jsonErr == nil {
		if setErr := r.client.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			r.logger.WarnwCtx(ctx, "Organization cache write failed",
				"client_id", clientID,
				"error", setErr,
			)
		}
	}

	return org, nil
}
