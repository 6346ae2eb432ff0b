package policy

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisMembershipCache holds an organisation's member set in a TTL'd
// redis set. An absent or empty key reads as a miss; every
// organisation has at least its creator as a member, so an empty set
// never needs caching.
type RedisMembershipCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMembershipCache(client *redis.Client, ttl time.Duration) *RedisMembershipCache {
	return &RedisMembershipCache{client: client, ttl: ttl}
}

func (c *RedisMembershipCache) Members(ctx context.Context, orgId uuid.UUID) ([]uuid.UUID, error) {
	raw, err := c.client.SMembers(ctx, membersKey(orgId)).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	members := make([]uuid.UUID, 0, len(raw))
	for _, val := range raw {
		id, err := uuid.Parse(val)
		if err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, nil
}

func (c *RedisMembershipCache) SetMembers(ctx context.Context, orgId uuid.UUID, members []uuid.UUID) error {
	if len(members) == 0 {
		return nil
	}

	vals := make([]interface{}, len(members))
	for i, id := range members {
		vals[i] = id.String()
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, membersKey(orgId))
	pipe.SAdd(ctx, membersKey(orgId), vals...)
	pipe.Expire(ctx, membersKey(orgId), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisMembershipCache) Invalidate(ctx context.Context, orgId uuid.UUID) error {
	return c.client.Del(ctx, membersKey(orgId)).Err()
}

func membersKey(orgId uuid.UUID) string {
	return "org:" + orgId.String() + ":members"
}
