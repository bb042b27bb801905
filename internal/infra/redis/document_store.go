package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/docstore"
)

const maxWatchRetries = 16

// DocumentStore keeps each document as one JSON string under doc:{path}.
// Merge and guarded writes run in a WATCH/MULTI transaction on the key.
type DocumentStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewDocumentStore(client *redis.Client) *DocumentStore {
	return &DocumentStore{client: client, now: time.Now}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *DocumentStore) Get(ctx context.Context, path string) (docstore.Document, error) {
	doc, exists, err := s.read(ctx, s.client, s.key(path))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, docstore.ErrNotFound
	}
	return doc, nil
}

func (s *DocumentStore) Set(ctx context.Context, path string, data docstore.Document, opts ...docstore.SetOption) error {
	key := s.key(path)
	o := docstore.BuildOptions(opts)

	if !o.Conditional() {
		next, err := docstore.Apply(nil, false, data, o, s.now().UTC())
		if err != nil {
			return err
		}
		raw, err := docstore.Encode(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return s.client.Set(ctx, key, raw, 0).Err()
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, exists, err := s.read(ctx, tx, key)
			if err != nil {
				return err
			}
			next, err := docstore.Apply(current, exists, data, o, s.now().UTC())
			if err != nil {
				return err
			}
			raw, err := docstore.Encode(next)
			if err != nil {
				return fmt.Errorf("encode %s: %w", path, err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, raw, 0)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("write %s: too much contention", path)
}

func (s *DocumentStore) NewKey(_ string) string {
	return uuid.NewString()
}

func (s *DocumentStore) read(ctx context.Context, c getter, key string) (docstore.Document, bool, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	doc, err := docstore.Decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc, true, nil
}

func (s *DocumentStore) key(path string) string {
	return "doc:" + path
}
