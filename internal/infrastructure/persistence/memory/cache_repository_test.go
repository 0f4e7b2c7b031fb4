package memory

import (
	"context"
	"testing"
	"time"

	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CacheRepositoryTestSuite struct {
	suite.Suite
	repo  *CacheRepository
	clock time.Time
	ctx   context.Context
}

func (s *CacheRepositoryTestSuite) SetupTest() {
	s.repo = NewCacheRepository(0)
	s.clock = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	s.repo.now = func() time.Time { return s.clock }
	s.ctx = context.Background()
}

func (s *CacheRepositoryTestSuite) TearDownTest() {
	s.repo.Close()
}

func (s *CacheRepositoryTestSuite) TestGetMiss() {
	_, err := s.repo.Get(s.ctx, "absent")
	s.ErrorIs(err, outbound.ErrCacheMiss)
}

func (s *CacheRepositoryTestSuite) TestSetAndGet() {
	value := []byte(`{"ok":true}`)
	s.Require().NoError(s.repo.Set(s.ctx, "k", value, time.Minute))

	// Mutating the caller's slice does not leak into the cache
	value[0] = 'x'

	got, err := s.repo.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal(`{"ok":true}`, string(got))
}

func (s *CacheRepositoryTestSuite) TestExpiry() {
	s.Require().NoError(s.repo.Set(s.ctx, "k", []byte("v"), time.Minute))

	s.clock = s.clock.Add(2 * time.Minute)

	_, err := s.repo.Get(s.ctx, "k")
	s.ErrorIs(err, outbound.ErrCacheMiss)

	exists, err := s.repo.Exists(s.ctx, "k")
	s.Require().NoError(err)
	s.False(exists)

	s.repo.sweep()
	s.Equal(0, s.repo.Len())
}

func (s *CacheRepositoryTestSuite) TestZeroTTLUsesDefault() {
	s.Require().NoError(s.repo.Set(s.ctx, "k", []byte("v"), 0))

	s.clock = s.clock.Add(DefaultTTL - time.Second)
	exists, err := s.repo.Exists(s.ctx, "k")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *CacheRepositoryTestSuite) TestDeletePrefix() {
	for _, k := range []string{"context:user:1", "context:user:2", "ingredients:all"} {
		s.Require().NoError(s.repo.Set(s.ctx, k, []byte("v"), time.Minute))
	}

	s.Require().NoError(s.repo.DeletePrefix(s.ctx, "context:user:"))

	s.Equal(1, s.repo.Len())
	exists, _ := s.repo.Exists(s.ctx, "ingredients:all")
	s.True(exists)
}

func (s *CacheRepositoryTestSuite) TestDelete() {
	s.Require().NoError(s.repo.Set(s.ctx, "k", []byte("v"), time.Minute))
	s.Require().NoError(s.repo.Delete(s.ctx, "k"))

	exists, err := s.repo.Exists(s.ctx, "k")
	s.Require().NoError(err)
	s.False(exists)
}

func TestCacheRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CacheRepositoryTestSuite))
}

func TestCloseIsIdempotent(t *testing.T) {
	repo := NewCacheRepository(time.Millisecond)
	repo.Close()
	require.NotPanics(t, repo.Close)
	assert.Equal(t, 0, repo.Len())
}
