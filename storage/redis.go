package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Redis is a Store backed by a Redis server: one string key per document
// plus a set tracking every known document ID, grounded on the teacher's
// crdtstorage RedisPersistence.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis wraps an already-configured Redis client. keyPrefix namespaces
// every key this store writes, so multiple document collections can share
// one Redis instance.
func NewRedis(client *redis.Client, keyPrefix string) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix}
}

func (r *Redis) docKey(id string) string {
	return fmt.Sprintf("%s:doc:%s", r.keyPrefix, id)
}

func (r *Redis) listKey() string {
	return fmt.Sprintf("%s:docs", r.keyPrefix)
}

func (r *Redis) Save(ctx context.Context, id string, data []byte) error {
	if err := r.client.Set(ctx, r.docKey(id), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "save document %s", id)
	}
	if err := r.client.SAdd(ctx, r.listKey(), id).Err(); err != nil {
		return errors.Wrapf(err, "index document %s", id)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.docKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound{ID: id}
		}
		return nil, errors.Wrapf(err, "load document %s", id)
	}
	return data, nil
}

func (r *Redis) List(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.listKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	return ids, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.docKey(id)).Err(); err != nil {
		return errors.Wrapf(err, "delete document %s", id)
	}
	if err := r.client.SRem(ctx, r.listKey(), id).Err(); err != nil {
		return errors.Wrapf(err, "unindex document %s", id)
	}
	return nil
}

func (r *Redis) Close() error {
	return nil
}
