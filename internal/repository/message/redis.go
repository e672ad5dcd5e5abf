package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aniladanir/portfolio-contact-service/internal/domain"
	"github.com/go-redis/redis/v8"
)

const (
	redisDocPrefix = "contact_msg:"
	redisIndexKey  = "contact_msgs:by_created"

	// attempts per write when another client modifies the watched document first
	redisMaxWatchAttempts = 64
)

type redisRepo struct {
	client *redis.Client
}

// NewRedisMessageRepository stores each message as a JSON document under its
// own key and keeps a sorted set of ids scored by creation time.
func NewRedisMessageRepository(client *redis.Client) Repository {
	return &redisRepo{client: client}
}

func docKey(id string) string {
	return redisDocPrefix + id
}

func (r *redisRepo) Insert(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	stored := prepareInsert(msg, time.Now())

	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, storageErr(err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKey(stored.ID), doc, 0)
		pipe.ZAdd(ctx, redisIndexKey, &redis.Z{
			Score:  float64(stored.CreatedAt.UnixMicro()),
			Member: stored.ID,
		})
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return stored, nil
}

func (r *redisRepo) ListAll(ctx context.Context) ([]domain.ContactMessage, error) {
	ids, err := r.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, storageErr(err)
	}

	messages := make([]domain.ContactMessage, 0, len(ids))
	if len(ids) == 0 {
		return messages, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, docKey(id))
	}

	docs, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storageErr(err)
	}

	for _, doc := range docs {
		// index entry whose document was removed between the two reads
		raw, ok := doc.(string)
		if !ok {
			continue
		}
		var msg domain.ContactMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, storageErr(err)
		}
		messages = append(messages, msg)
	}

	sortNewestFirst(messages)

	return messages, nil
}

func (r *redisRepo) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	return getDoc(ctx, r.client, id)
}

// watch runs fn under WATCH on the document key. A transaction aborted by a
// concurrent write is re-run against the fresh document, so writes to the same
// id are applied one after another.
func (r *redisRepo) watch(ctx context.Context, id string, fn func(tx *redis.Tx) error) error {
	var err error
	for range redisMaxWatchAttempts {
		err = r.client.Watch(ctx, fn, docKey(id))
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func (r *redisRepo) Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.ContactMessage, error) {
	var msg *domain.ContactMessage
	err := r.watch(ctx, id, func(tx *redis.Tx) error {
		current, err := getDoc(ctx, tx, id)
		if err != nil {
			return err
		}

		current.Apply(patch, time.Now())

		doc, err := json.Marshal(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey(id), doc, 0)
			return nil
		})
		if err != nil {
			return err
		}

		msg = current
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return msg, nil
}

func (r *redisRepo) DeleteByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	var msg *domain.ContactMessage
	err := r.watch(ctx, id, func(tx *redis.Tx) error {
		current, err := getDoc(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, docKey(id))
			pipe.ZRem(ctx, redisIndexKey, id)
			return nil
		})
		if err != nil {
			return err
		}

		msg = current
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return msg, nil
}

type docGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getDoc(ctx context.Context, c docGetter, id string) (*domain.ContactMessage, error) {
	raw, err := c.Get(ctx, docKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}

	var msg domain.ContactMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, storageErr(fmt.Errorf("decode message %s: %w", id, err))
	}
	return &msg, nil
}

// sortNewestFirst orders by createdAt descending, breaking ties by id descending
func sortNewestFirst(messages []domain.ContactMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		}
		return messages[i].ID > messages[j].ID
	})
}
