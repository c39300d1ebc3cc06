package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
)

const productCacheTTL = 10 * time.Minute

// ProductCache keeps product documents in redis under "product:<id>".
type ProductCache struct {
	rdb *redis.Client
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb}
}

func productKey(id primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

// Get returns (nil, nil) on a cache miss.
func (c *ProductCache) Get(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var product entity.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product *entity.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, productCacheTTL).Err()
}

func (c *ProductCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

// SessionStore maps refresh tokens to user ids in redis.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *SessionStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(token), userID, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (string, error) {
	userID, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

// IdempotencyGuard claims checkout idempotency keys so a retried request
// cannot place the same order twice.
type IdempotencyGuard struct {
	rdb *redis.Client
}

func NewIdempotencyGuard(rdb *redis.Client) *IdempotencyGuard {
	return &IdempotencyGuard{rdb: rdb}
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

// Claim returns false when the key was already claimed.
func (g *IdempotencyGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.rdb.SetNX(ctx, idempotencyKey(key), "exists", ttl).Result()
}

// Release drops a claimed key so the same request may be retried, used when
// a checkout fails and reverts.
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, idempotencyKey(key)).Err()
}
