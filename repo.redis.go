package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure redisDocumentStore implements DocumentStore.
var _ DocumentStore = (*redisDocumentStore)(nil)

// redisDocumentStore keeps each document under its own key and tracks the
// ids of a collection into a set. Single document atomicity relies on
// WATCH/MULTI transactions retried on optimistic lock failures.
type redisDocumentStore struct {
	logger        *zap.Logger
	client        *redis.Client
	namespace     string
	maxRetries    int
	retryInterval time.Duration
}

// NewRedisDocumentStore provides an instance of redis-based document storage.
func NewRedisDocumentStore(logger *zap.Logger, config *Config, client *redis.Client) DocumentStore {
	return &redisDocumentStore{
		logger:        logger,
		client:        client,
		namespace:     config.Storage.Namespace,
		maxRetries:    config.Storage.MaxRetries,
		retryInterval: config.Storage.RetryInterval,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

func (rs *redisDocumentStore) key(collection, id string) string {
	return rs.namespace + ":" + collection + ":" + id
}

func (rs *redisDocumentStore) index(collection string) string {
	return rs.namespace + ":" + collection
}

// watch runs fn into an optimistic transaction over keys. Only transactions
// aborted because a watched key changed are retried.
func (rs *redisDocumentStore) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = rs.retryInterval
	expBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(rs.maxRetries)), ctx)

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := rs.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, policy)

	if errors.Is(err, redis.TxFailedErr) {
		rs.logger.Warn("repo: optimistic transaction gave up", zap.Strings("keys", keys), zap.Int("attempts", attempts))
	}
	return err
}

// Get retrieves a document based on its ID.
func (rs *redisDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	data, err := rs.client.Get(ctx, rs.key(collection, id)).Bytes()
	if err == redis.Nil {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

// Create inserts a new document. It fails if the id is already taken.
func (rs *redisDocumentStore) Create(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := codec.Marshal(doc)
	if err != nil {
		return err
	}
	key := rs.key(collection, id)
	return rs.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDocumentExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, rs.index(collection), id)
			return nil
		})
		return err
	}, key)
}

// Update replaces the given top-level fields of an existing document.
func (rs *redisDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return rs.Mutate(ctx, collection, id, func(current []byte) ([]byte, error) {
		return mergeFields(current, fields)
	})
}

// Mutate atomically rewrites an existing document. fn runs again with the
// fresh content each time a concurrent writer wins the race.
func (rs *redisDocumentStore) Mutate(ctx context.Context, collection, id string, fn MutateFunc) error {
	key := rs.key(collection, id)
	return rs.watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrDocumentNotFound
		}
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}, key)
}

// Delete removes a document based on its ID.
func (rs *redisDocumentStore) Delete(ctx context.Context, collection, id string) error {
	var deleted *redis.IntCmd
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, rs.key(collection, id))
		pipe.SRem(ctx, rs.index(collection), id)
		return nil
	})
	if err != nil {
		return err
	}
	if deleted.Val() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Query scans a whole collection then filters it in memory.
func (rs *redisDocumentStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	ids, err := rs.client.SMembers(ctx, rs.index(collection)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, rs.key(collection, id))
	}
	values, err := rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(values))
	for i, value := range values {
		s, ok := value.(string)
		if !ok {
			// removed between the index read and the fetch.
			continue
		}
		docs = append(docs, Document{ID: ids[i], Data: []byte(s)})
	}
	return applyQuery(docs, q)
}
