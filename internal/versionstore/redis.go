package versionstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisStore keeps records in a single Redis hash, one msgpack-encoded field
// per name.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Prefix is prepended to the hash key
	Prefix string
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "vellum:",
	}
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}

	return NewRedisStoreWithClient(client, config.Prefix), nil
}

// NewRedisStoreWithClient creates a store over an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    prefix + "versions",
	}
}

// Load returns the record for name
func (r *RedisStore) Load(ctx context.Context, name string) (Record, error) {
	data, err := r.client.HGet(ctx, r.key, name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound{Name: name}
		}
		return Record{}, err
	}
	return decodeRecord(name, data)
}

// Save inserts or replaces records in one round trip
func (r *RedisStore) Save(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}

	fields := make([]any, 0, 2*len(records))
	for _, rec := range records {
		data, err := msgpack.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.Name, err)
		}
		fields = append(fields, rec.Name, data)
	}
	return r.client.HSet(ctx, r.key, fields...).Err()
}

// All returns every record ordered by name
func (r *RedisStore) All(ctx context.Context) ([]Record, error) {
	entries, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(entries))
	for name, data := range entries {
		rec, err := decodeRecord(name, []byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func decodeRecord(name string, data []byte) (Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode record %s: %w", name, err)
	}
	return rec, nil
}
