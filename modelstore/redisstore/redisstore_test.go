package redisstore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gluco-ml/gluco/modelstore/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gopkg.in/redis.v5"
)

type RedisTestSuite struct {
	storetest.Suite
	server *miniredis.Miniredis
}

func (s *RedisTestSuite) SetupSuite() {
	var err error
	s.server, err = miniredis.Run()
	s.Require().NoError(err)
}

func (s *RedisTestSuite) TearDownSuite() {
	s.server.Close()
}

func (s *RedisTestSuite) SetupTest() {
	s.server.FlushAll()
	s.Store = New(redis.NewClient(&redis.Options{Addr: s.server.Addr()}), "gluco")
}

func TestRedis(t *testing.T) {
	suite.Run(t, new(RedisTestSuite))
}

func TestKeysArePrefixed(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	rs := &redisStore{redis.NewClient(&redis.Options{Addr: server.Addr()}), "gluco"}
	assert.Equal(t, "gluco:models:id3", rs.keyFor("id3"))
	require.NoError(t, server.Set("other:models:nb", "{}"))
	names, err := rs.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, names)
}
