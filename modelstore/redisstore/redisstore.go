/*
Package redisstore provides an implementation of modelstore.Store backed by
a redis DB. Every model is a string key named after the store prefix and the
model name.
*/
package redisstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gluco-ml/gluco/feature"
	"github.com/gluco-ml/gluco/modelstore"
	"github.com/juju/errors"
	"gopkg.in/redis.v5"
)

type redisStore struct {
	rc     *redis.Client
	prefix string
}

// New builds a modelstore.Store backed by a redis DB
func New(rc *redis.Client, prefix string) modelstore.Store {
	return &redisStore{rc, prefix}
}

func (rs *redisStore) Save(ctx context.Context, m *modelstore.Model) error {
	data, err := modelstore.Encode(m)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rs.rc.Set(rs.keyFor(m.Name), data, 0).Err(); err != nil {
		return errors.Annotatef(err, "storing model %q in redis", m.Name)
	}
	return nil
}

func (rs *redisStore) Load(ctx context.Context, name string, features []feature.Feature) (*modelstore.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := rs.rc.Get(rs.keyFor(name)).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFoundf("model %s", name)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "retrieving model %q", name)
	}
	return modelstore.Decode(data, features)
}

func (rs *redisStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deleted, err := rs.rc.Del(rs.keyFor(name)).Result()
	if err != nil {
		return errors.Annotatef(err, "deleting model %q from redis", name)
	}
	if deleted == 0 {
		return errors.NotFoundf("model %s", name)
	}
	return nil
}

func (rs *redisStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := rs.rc.Keys(rs.keyFor("*")).Result()
	if err != nil {
		return nil, errors.Annotate(err, "listing models in redis")
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = strings.TrimPrefix(k, rs.keyFor(""))
	}
	sort.Strings(names)
	return names, nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return rs.rc.Close()
}

func (rs *redisStore) keyFor(name string) string {
	return fmt.Sprintf("%s:models:%s", rs.prefix, name)
}
