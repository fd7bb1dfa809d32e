package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRecordNotFound indicates no durable record exists for the key.
var ErrRecordNotFound = errors.New("auth: record not found")

// Repository persists serialized credentials records.
type Repository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisRepository implements Repository using Redis.
type RedisRepository struct {
	client *redis.Client
}

// NewRepository constructs a Redis repository.
func NewRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Load fetches the record stored under key.
func (r *RedisRepository) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return payload, nil
}

// Save writes the record; a zero ttl keeps it until deleted.
func (r *RedisRepository) Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, payload, ttl).Err()
}

// Delete removes the record. Missing keys are not an error.
func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

var _ Repository = (*RedisRepository)(nil)
