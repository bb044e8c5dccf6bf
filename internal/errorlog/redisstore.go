package errorlog

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPersister mirrors log snapshots into Redis.  The snapshot is a
// plain string value under a fixed key, overwritten on every write.
type RedisPersister struct {
	client *redis.Client
}

// NewRedisPersister wraps the given client.  A nil client yields a nil
// persister, which disables the durable mirror; callers can pass the
// result straight into Options.
func NewRedisPersister(client *redis.Client) *RedisPersister {
	if client == nil {
		return nil
	}
	return &RedisPersister{client: client}
}

// Set writes the snapshot value.  No TTL: the mirror always reflects
// the latest state and is only replaced, never expired.  A nil
// receiver is a no-op so a degraded Redis setup never breaks logging.
func (p *RedisPersister) Set(ctx context.Context, key, value string) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Set(ctx, key, value, 0).Err()
}
