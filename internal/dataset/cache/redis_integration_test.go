//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"afi/internal/dataset/cache"
	"afi/internal/dataset/models"
	"afi/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewRedisCache(s.redis.Client.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	records := []models.Record{{
		ID:                "r1",
		Period:            "2025-01",
		StateCanonical:    "Bihar",
		DistrictClean:     "Patna",
		AFICompositeScore: 99.5,
		AadhaarBase:       models.Ptr[int64](1000),
		ClusterName:       models.Ptr("Low-Friction Stable"),
	}}

	_, ok, err := s.cache.Get(ctx)
	s.Require().NoError(err)
	s.False(ok)

	s.store(ctx, records)
	got, ok, err := s.cache.Get(ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(records, got)

	ttl, err := s.redis.Client.TTL(ctx, cache.DefaultRedisKey).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.store(ctx, []models.Record{{ID: "r1"}})
	s.Require().NoError(s.cache.Invalidate(ctx))

	_, ok, err := s.cache.Get(ctx)
	s.Require().NoError(err)
	s.False(ok)

	gen, err := s.cache.Generation(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), gen)
}

func (s *RedisCacheSuite) TestStaleWriteRefused() {
	ctx := context.Background()
	gen, err := s.cache.Generation(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.cache.Invalidate(ctx))

	stored, err := s.cache.Set(ctx, gen, []models.Record{{ID: "partial"}})
	s.Require().NoError(err)
	s.False(stored)

	_, ok, err := s.cache.Get(ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisCacheSuite) store(ctx context.Context, records []models.Record) {
	gen, err := s.cache.Generation(ctx)
	s.Require().NoError(err)
	stored, err := s.cache.Set(ctx, gen, records)
	s.Require().NoError(err)
	s.Require().True(stored)
}
