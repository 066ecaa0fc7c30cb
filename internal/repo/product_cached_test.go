package repo_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/redissvc"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisService connects to REDIS_ADDR when set and to an in-process
// miniredis otherwise.
func redisService(t *testing.T) *redissvc.RedisService {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		rs := redissvc.NewRedisService(redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()}))
		t.Cleanup(func() { rs.Close() })
		return rs
	}
	rs, err := redissvc.Connect(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, rs.Rdb().FlushDB(context.Background()).Err())
	t.Cleanup(func() { rs.Close() })
	return rs
}

func newCachedOver(t *testing.T, backing repo.ProductRepository) (*repo.CachedProductRepository, *redissvc.RedisService) {
	rs := redisService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo.NewCachedProductRepository(backing, rs, time.Minute, logger), rs
}

func newCached(t *testing.T) (*repo.CachedProductRepository, *repo.InMemoryProductRepository, *redissvc.RedisService) {
	backing := repo.NewInMemoryProductRepository()
	cached, rs := newCachedOver(t, backing)
	return cached, backing, rs
}

// afterReadRepository runs hook once, right after the first GetByID returns
// from the wrapped repository.
type afterReadRepository struct {
	repo.ProductRepository
	once sync.Once
	hook func()
}

func (r *afterReadRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	p, err := r.ProductRepository.GetByID(ctx, id)
	r.once.Do(r.hook)
	return p, err
}

func TestCachedProductRepository(t *testing.T) {
	cached, _, _ := newCached(t)
	testRepositoryContract(t, cached)
}

func TestCachedProductRepository_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	cached, backing, rs := newCached(t)

	p, err := cached.Create(ctx, models.Product{Name: "Widget"})
	require.NoError(t, err)

	_, err = cached.GetByID(ctx, p.ID)
	require.NoError(t, err)

	var hit models.Product
	require.NoError(t, rs.GetJSON(ctx, "product:1", &hit))
	assert.Equal(t, "Widget", hit.Name)

	// Gone from the backing store but still cached.
	backing.Clear()
	got, err := cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCachedProductRepository_WritesEvict(t *testing.T) {
	ctx := context.Background()
	cached, _, rs := newCached(t)

	p, err := cached.Create(ctx, models.Product{Name: "Widget"})
	require.NoError(t, err)
	p, err = cached.GetByID(ctx, p.ID)
	require.NoError(t, err)

	p.Name = "Widget v2"
	res, err := cached.UpdateIfMatching(ctx, p)
	require.NoError(t, err)
	require.Equal(t, repo.UpdateOK, res)

	var hit models.Product
	assert.ErrorIs(t, rs.GetJSON(ctx, "product:1", &hit), redissvc.ErrCacheMiss)

	got, err := cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", got.Name)

	require.NoError(t, cached.Remove(ctx, got))
	assert.ErrorIs(t, rs.GetJSON(ctx, "product:1", &hit), redissvc.ErrCacheMiss)
}

func TestCachedProductRepository_WriteDuringFillIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	backing := repo.NewInMemoryProductRepository()
	slow := &afterReadRepository{ProductRepository: backing}
	cached, rs := newCachedOver(t, slow)

	p, err := backing.Create(ctx, models.Product{Name: "v1"})
	require.NoError(t, err)

	slow.hook = func() {
		update := p
		update.Name = "v2"
		res, err := cached.UpdateIfMatching(ctx, update)
		require.NoError(t, err)
		require.Equal(t, repo.UpdateOK, res)
	}

	// This read observed v1 before the update committed.
	stale, err := cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", stale.Name)

	var hit models.Product
	assert.ErrorIs(t, rs.GetJSON(ctx, "product:1", &hit), redissvc.ErrCacheMiss)

	got, err := cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)
	assert.Equal(t, 2, got.Version)

	// The fresh version is usable for the next conditional write.
	got.Name = "v3"
	res, err := cached.UpdateIfMatching(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, repo.UpdateOK, res)
}

func TestCachedProductRepository_RemoveDuringFillIsNotResurrected(t *testing.T) {
	ctx := context.Background()
	backing := repo.NewInMemoryProductRepository()
	slow := &afterReadRepository{ProductRepository: backing}
	cached, _ := newCachedOver(t, slow)

	p, err := backing.Create(ctx, models.Product{Name: "Widget"})
	require.NoError(t, err)

	slow.hook = func() {
		require.NoError(t, cached.Remove(ctx, p))
	}

	_, err = cached.GetByID(ctx, p.ID)
	require.NoError(t, err)

	_, err = cached.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repo.ErrProductNotFound)
}
