package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// ttlGrace keeps an expired record around briefly so a late verifier can
// observe Expired rather than NotFound. Correctness does not depend on the
// Redis TTL; the verifier re-checks ExpiresAt on every read.
const ttlGrace = time.Minute

// consumeScript deletes the key only when the stored challenge's code
// equals the submitted one. Running it server-side makes the
// compare-and-delete atomic across concurrent verifiers and instances.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then return 0 end
local ok, data = pcall(cjson.decode, v)
if not ok then return 0 end
if data.code == ARGV[1] then return redis.call("DEL", KEYS[1]) end
return 0
`)

// RedisStore is the production Store: shared across server instances, with
// a TTL as housekeeping on top of the verifier's lazy expiry check.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed challenge store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put overwrites any existing challenge for the key. SET is atomic, so the
// last writer wins and the prior code becomes unreachable.
func (s *RedisStore) Put(ctx context.Context, key string, ch Challenge) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	ttl := time.Until(ch.ExpiresAt) + ttlGrace
	if ttl <= 0 {
		ttl = ttlGrace
	}
	if err := s.client.Set(ctx, keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist challenge: %w", err)
	}
	return nil
}

// Get loads and decodes the stored challenge, or nil when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (*Challenge, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	var ch Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	return &ch, nil
}

// Consume atomically deletes the challenge when the stored code matches.
func (s *RedisStore) Consume(ctx context.Context, key, code string) (bool, error) {
	deleted, err := consumeScript.Run(ctx, s.client, []string{keyPrefix + key}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume challenge: %w", err)
	}
	return deleted > 0, nil
}

// Delete removes any challenge for the key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}
