package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/suitent/sui-deepbook-swap/internal/models"
)

const (
	recentBuildsKey = "builds:recent"
	recentBuildsMax = 500
)

// RedisCache keeps the recent swap-build feed in a capped Redis list and
// fans events out over Pub/Sub.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis at the given address.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
	}
}

// NewRedisCacheFromClient reuses an existing client, typically shared with
// the flags store.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// AddRecentBuild pushes a build event onto the capped recent list.
func (r *RedisCache) AddRecentBuild(ctx context.Context, ev *models.BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, recentBuildsKey, data)
	pipe.LTrim(ctx, recentBuildsKey, 0, recentBuildsMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent build: %w", err)
	}
	return nil
}

// GetRecentBuilds returns up to limit most recent build events.
func (r *RedisCache) GetRecentBuilds(ctx context.Context, limit int64) ([]*models.BuildEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	vals, err := r.client.LRange(ctx, recentBuildsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get recent builds: %w", err)
	}

	out := make([]*models.BuildEvent, 0, len(vals))
	for _, v := range vals {
		var ev models.BuildEvent
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}

// PublishBuild publishes a build event to the global and pair channels.
func (r *RedisCache) PublishBuild(ctx context.Context, ev *models.BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}

	channels := []string{
		"builds:all",
		fmt.Sprintf("builds:pair:%s", ev.Pair),
	}

	pipe := r.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// SubscribeBuilds subscribes to all build events. The returned channel
// closes when ctx is cancelled.
func (r *RedisCache) SubscribeBuilds(ctx context.Context) (<-chan *models.BuildEvent, error) {
	pubsub := r.client.Subscribe(ctx, "builds:all")
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe builds: %w", err)
	}

	out := make(chan *models.BuildEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var ev models.BuildEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- &ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks the Redis connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
