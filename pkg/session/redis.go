package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

const redisKeyPrefix = "heightcompare:board:"

// RedisStore keeps boards in Redis. Expiring boards get a matching key TTL,
// so Redis removes them on its own.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client; it can be shared with the cache
// through [cache.RedisCache.Client].
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: redisKeyPrefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := errors.ValidateBoardID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "redis get board")
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	if sess.IsExpired(now()) {
		return nil, notFound(id)
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	if err := errors.ValidateBoardID(sess.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			return s.Delete(ctx, sess.ID)
		}
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "redis set board")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "redis delete board")
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]*Session, error) {
	var out []*Session
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(s.prefix):]
		sess, err := s.Get(ctx, id)
		if errors.IsNotFound(err) || errors.IsInvalid(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "redis scan boards")
	}
	sortByUpdated(out)
	return out, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
