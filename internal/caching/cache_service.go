package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Dashboard summary caching
	GetDashboardSummary(ctx context.Context, tenantID uuid.UUID, dest interface{}) (bool, error)
	SetDashboardSummary(ctx context.Context, tenantID uuid.UUID, summary interface{}, ttl time.Duration) error
	InvalidateDashboardSummary(ctx context.Context, tenantID uuid.UUID) error

	// Per-tenant sync lease, so a manual trigger cannot overlap the timer-driven pass
	AcquireSyncLease(ctx context.Context, tenantID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseSyncLease(ctx context.Context, tenantID uuid.UUID) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetDashboardSummary(ctx context.Context, tenantID uuid.UUID, dest interface{}) (bool, error) {
	key := fmt.Sprintf("conexx:summary:%s", tenantID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) SetDashboardSummary(ctx context.Context, tenantID uuid.UUID, summary interface{}, ttl time.Duration) error {
	key := fmt.Sprintf("conexx:summary:%s", tenantID.String())
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) InvalidateDashboardSummary(ctx context.Context, tenantID uuid.UUID) error {
	key := fmt.Sprintf("conexx:summary:%s", tenantID.String())
	return r.client.Del(ctx, key).Err()
}

// AcquireSyncLease sets the per-tenant lock key if absent. The TTL guards
// against a crashed holder leaving the tenant permanently locked.
func (r *redisCacheService) AcquireSyncLease(ctx context.Context, tenantID uuid.UUID, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("conexx:synclock:%s", tenantID.String())
	return r.client.SetNX(ctx, key, time.Now().Format(time.RFC3339), ttl).Result()
}

func (r *redisCacheService) ReleaseSyncLease(ctx context.Context, tenantID uuid.UUID) error {
	key := fmt.Sprintf("conexx:synclock:%s", tenantID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
