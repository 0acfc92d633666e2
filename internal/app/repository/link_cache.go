package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avelns/shortlinkd/internal/app/model"
)

const (
	linkCacheKeyPrefix = "link:"
	linkCacheTTL       = 30 * time.Second
)

// CachedLinkRepository decorates a LinkRepository with a read-through Redis
// cache. Every mutation path invalidates the cached record, so resolution
// never observes a stale status or interstitial flag. Visit increments skip
// invalidation on purpose: visit_count is never read on the resolve path and
// the short TTL bounds how stale the counter can appear elsewhere.
type CachedLinkRepository struct {
	inner  LinkRepository
	redis  *redis.Client
	logger *zap.Logger
}

// NewCachedLinkRepository wraps inner with a Redis cache. Cache failures are
// logged and treated as misses; the store stays authoritative.
func NewCachedLinkRepository(inner LinkRepository, rdb *redis.Client, logger *zap.Logger) *CachedLinkRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLinkRepository{inner: inner, redis: rdb, logger: logger}
}

func (r *CachedLinkRepository) Create(ctx context.Context, link *model.Link) error {
	return r.inner.Create(ctx, link)
}

func (r *CachedLinkRepository) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	if cached := r.fromCache(ctx, slug); cached != nil {
		return cached, nil
	}

	link, err := r.inner.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	r.toCache(ctx, link)
	return link, nil
}

func (r *CachedLinkRepository) List(ctx context.Context, limit, offset int, search string) ([]model.Link, error) {
	return r.inner.List(ctx, limit, offset, search)
}

func (r *CachedLinkRepository) UpdateStatus(ctx context.Context, slug, status string) (int64, error) {
	affected, err := r.inner.UpdateStatus(ctx, slug, status)
	if err == nil {
		r.invalidate(ctx, slug)
	}
	return affected, err
}

func (r *CachedLinkRepository) UpdateInterstitial(ctx context.Context, slug string, interstitial bool) (int64, error) {
	affected, err := r.inner.UpdateInterstitial(ctx, slug, interstitial)
	if err == nil {
		r.invalidate(ctx, slug)
	}
	return affected, err
}

func (r *CachedLinkRepository) IncrementVisits(ctx context.Context, slug string) error {
	return r.inner.IncrementVisits(ctx, slug)
}

func (r *CachedLinkRepository) Delete(ctx context.Context, slug string) error {
	err := r.inner.Delete(ctx, slug)
	if err == nil {
		r.invalidate(ctx, slug)
	}
	return err
}

func (r *CachedLinkRepository) fromCache(ctx context.Context, slug string) *model.Link {
	data, err := r.redis.Get(ctx, linkCacheKeyPrefix+slug).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("link cache read failed", zap.Error(err), zap.String("slug", slug))
		}
		return nil
	}

	var link model.Link
	if err := json.Unmarshal(data, &link); err != nil {
		r.logger.Warn("link cache entry corrupt", zap.Error(err), zap.String("slug", slug))
		return nil
	}
	return &link
}

func (r *CachedLinkRepository) toCache(ctx context.Context, link *model.Link) {
	data, err := json.Marshal(link)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, linkCacheKeyPrefix+link.Slug, data, linkCacheTTL).Err(); err != nil {
		r.logger.Warn("link cache write failed", zap.Error(err), zap.String("slug", link.Slug))
	}
}

func (r *CachedLinkRepository) invalidate(ctx context.Context, slug string) {
	if err := r.redis.Del(ctx, linkCacheKeyPrefix+slug).Err(); err != nil {
		r.logger.Warn("link cache invalidation failed", zap.Error(err), zap.String("slug", slug))
	}
}
