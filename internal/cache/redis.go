package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/vmihailenco/msgpack/v5"
)

const keyPrefix = "whack-a-blob:leaderboard:"

// redisClient is the subset of the go-redis client used by the cache.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LeaderboardCache keeps msgpack-encoded leaderboards in Redis with a fixed TTL.
type LeaderboardCache struct {
	client redisClient
	ttl    time.Duration
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)

func NewLeaderboardCache(client redisClient, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and verifies the connection with a PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func key(seasonID int64) string {
	return keyPrefix + strconv.FormatInt(seasonID, 10)
}

func (c *LeaderboardCache) Get(ctx context.Context, seasonID int64) ([]leaderboard.Entry, bool, error) {
	data, err := c.client.Get(ctx, key(seasonID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}
	var entries []leaderboard.Entry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}
	return entries, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, seasonID int64, entries []leaderboard.Entry) error {
	data, err := msgpack.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	if err := c.client.Set(ctx, key(seasonID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

func (c *LeaderboardCache) Delete(ctx context.Context, seasonID int64) error {
	if err := c.client.Del(ctx, key(seasonID)).Err(); err != nil {
		return fmt.Errorf("failed to delete leaderboard cache: %w", err)
	}
	return nil
}
