package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelichko/tourbooking/config"
	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

func (c *RedisCache) GetActivities(ctx context.Context) ([]domain.Activity, error) {
	data, err := c.client.Get(ctx, activitiesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var activities []domain.Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *RedisCache) SetActivities(ctx context.Context, activities []domain.Activity) error {
	payload, err := json.Marshal(activities)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activitiesKey(), payload, c.catalogTTL).Err()
}

func (c *RedisCache) GetSlots(ctx context.Context, activityID string) ([]domain.Slot, error) {
	data, err := c.client.Get(ctx, slotsKey(activityID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var slots []domain.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetSlots(ctx context.Context, activityID string, slots []domain.Slot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotsKey(activityID), payload, c.catalogTTL).Err()
}

// InvalidateSlots drops the cached slot listing for an activity; called
// after a booking commit or cancellation changes remaining seats.
func (c *RedisCache) InvalidateSlots(ctx context.Context, activityID string) error {
	return c.client.Del(ctx, slotsKey(activityID)).Err()
}

func activitiesKey() string {
	return "cache:activities"
}

func slotsKey(activityID string) string {
	return fmt.Sprintf("cache:activity:%s:slots", activityID)
}
