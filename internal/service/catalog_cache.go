package service

import (
	"context"
	"encoding/json"
	"fmt"
	"neonclub_backend/internal/model"
	"neonclub_backend/pkg/logger"
	"neonclub_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const courseCacheKeyPrefix = "catalog:course:"

// CatalogCache 课程详情的 Redis 旁路缓存；Redis 为 nil 时所有操作为空操作
type CatalogCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{Redis: rdb, TTL: ttl}
}

func courseKey(id uint) string {
	return fmt.Sprintf("%s%d", courseCacheKeyPrefix, id)
}

func (c *CatalogCache) enabled() bool {
	return c != nil && c.Redis != nil
}

func (c *CatalogCache) GetCourse(ctx context.Context, id uint) (*model.Course, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.Redis.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("catalog cache get failed", zap.Uint("courseId", id), zap.Error(err))
		}
		monitoring.CacheCounter.WithLabelValues("miss").Inc()
		return nil, false
	}

	var course model.Course
	if err := json.Unmarshal(data, &course); err != nil {
		monitoring.CacheCounter.WithLabelValues("miss").Inc()
		return nil, false
	}
	monitoring.CacheCounter.WithLabelValues("hit").Inc()
	return &course, true
}

func (c *CatalogCache) SetCourse(ctx context.Context, course *model.Course) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(course)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, courseKey(course.ID), data, c.TTL).Err(); err != nil {
		logger.Log.Warn("catalog cache set failed", zap.Uint("courseId", course.ID), zap.Error(err))
	}
}

func (c *CatalogCache) InvalidateCourse(ctx context.Context, id uint) {
	if !c.enabled() {
		return
	}
	if err := c.Redis.Del(ctx, courseKey(id)).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidate failed", zap.Uint("courseId", id), zap.Error(err))
	}
}
