package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "kashvi:events:queue"

// putScript records a new key in the order list only when HSET created the
// field, so re-queuing keeps the original position.
var putScript = redis.NewScript(`
local added = redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
if added == 1 then
	redis.call('RPUSH', KEYS[1], ARGV[1])
end
return added
`)

// RedisStore keeps each queue as a hash of encoded key → encoded payload
// plus a list recording key insertion order.
//
// Keys and payloads round-trip through encoding/json, so a flusher sees the
// JSON decoding of what was queued (numbers arrive as float64, structs as
// map[string]any).
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore creates a store on rdb. An empty prefix selects
// "kashvi:events:queue".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) orderKey(queue string) string { return s.prefix + ":" + queue + ":keys" }
func (s *RedisStore) itemsKey(queue string) string { return s.prefix + ":" + queue + ":items" }

func (s *RedisStore) Put(ctx context.Context, queue string, key any, payload []any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	field, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("queue/redis: marshal key: %w", err)
	}
	if payload == nil {
		payload = []any{}
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue/redis: marshal payload: %w", err)
	}

	keys := []string{s.orderKey(queue), s.itemsKey(queue)}
	if err := putScript.Run(ctx, s.rdb, keys, string(field), string(value)).Err(); err != nil {
		return fmt.Errorf("queue/redis: put: %w", err)
	}
	return nil
}

func (s *RedisStore) Entries(ctx context.Context, queue string) ([]Entry, error) {
	var (
		order *redis.StringSliceCmd
		items *redis.MapStringStringCmd
	)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		order = pipe.LRange(ctx, s.orderKey(queue), 0, -1)
		items = pipe.HGetAll(ctx, s.itemsKey(queue))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("queue/redis: entries: %w", err)
	}

	values := items.Val()
	out := make([]Entry, 0, len(order.Val()))
	for _, field := range order.Val() {
		raw, ok := values[field]
		if !ok {
			continue
		}

		var e Entry
		if err := json.Unmarshal([]byte(field), &e.Key); err != nil {
			return nil, fmt.Errorf("queue/redis: decode key %s: %w", field, err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Payload); err != nil {
			return nil, fmt.Errorf("queue/redis: decode payload for %s: %w", field, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) Forget(ctx context.Context, queue string) error {
	if err := s.rdb.Del(ctx, s.orderKey(queue), s.itemsKey(queue)).Err(); err != nil {
		return fmt.Errorf("queue/redis: forget: %w", err)
	}
	return nil
}
