package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CachedPlan 学习计划的缓存快照，按用户存一份最近的计划。
// 持久化记录永远是权威数据，缓存只用来省掉热路径上的数据库往返，
// 不一致时以数据库为准。
type CachedPlan struct {
	SessionID   uint      `json:"session_id"`
	Topic       string    `json:"topic"`
	Level       string    `json:"level"`
	Summary     string    `json:"summary"`
	Curriculum  string    `json:"curriculum"`
	State       string    `json:"state"`
	CurrentWeek int       `json:"current_week"`
	Progress    int       `json:"progress"`
	CachedAt    time.Time `json:"cached_at"`
}

type PlanCacheRepository struct {
	Redis *redis.Client
	ttl   time.Duration
}

func NewPlanCacheRepository(rdb *redis.Client, ttl time.Duration) *PlanCacheRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PlanCacheRepository{Redis: rdb, ttl: ttl}
}

func (r *PlanCacheRepository) key(userID uint) string {
	return fmt.Sprintf("plan:current:%d", userID)
}

func (r *PlanCacheRepository) Get(ctx context.Context, userID uint) (*CachedPlan, error) {
	if r.Redis == nil {
		return nil, redis.Nil
	}
	raw, err := r.Redis.Get(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	var plan CachedPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanCacheRepository) Set(ctx context.Context, userID uint, plan *CachedPlan) error {
	if r.Redis == nil {
		return nil
	}
	plan.CachedAt = time.Now()
	payload, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, r.key(userID), payload, r.ttl).Err()
}

func (r *PlanCacheRepository) Invalidate(ctx context.Context, userID uint) error {
	if r.Redis == nil {
		return nil
	}
	return r.Redis.Del(ctx, r.key(userID)).Err()
}
