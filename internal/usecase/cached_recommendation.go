package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ResponseCache is the slice of the cache client the usecase needs.
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedRecommendation caches successful recommendation results. Caching is
// sound here: the bundle is immutable for the process lifetime, so the same
// (candidate_id, top_k) always yields the same result. Not-found and other
// errors are never cached.
type CachedRecommendation struct {
	inner  RecommendationUsecase
	cache  ResponseCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRecommendation(inner RecommendationUsecase, cache ResponseCache, ttl time.Duration, logger *zap.Logger) *CachedRecommendation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRecommendation{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (u *CachedRecommendation) Recommend(ctx context.Context, candidateID int64, topK int) (RecommendationResult, error) {
	if u.cache == nil {
		return u.inner.Recommend(ctx, candidateID, topK)
	}

	key := fmt.Sprintf("recommend:%d:%d", candidateID, topK)

	var cached RecommendationResult
	hit, err := u.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		u.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	res, err := u.inner.Recommend(ctx, candidateID, topK)
	if err != nil {
		return RecommendationResult{}, err
	}

	if err := u.cache.SetJSON(ctx, key, res, u.ttl); err != nil {
		u.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return res, nil
}
