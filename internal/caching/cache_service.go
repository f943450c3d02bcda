package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "dinepos"

type CacheService interface {
	// Menu item caching
	GetItem(ctx context.Context, outletID, itemID uuid.UUID) (*models.Item, error)
	SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, outletID, itemID uuid.UUID) error

	// Outlet settings caching
	GetSettings(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error)
	SetSettings(ctx context.Context, settings *models.OutletSettings, ttl time.Duration) error
	DeleteSettings(ctx context.Context, outletID uuid.UUID) error

	// Resolved role permissions
	GetPermissions(ctx context.Context, outletID uuid.UUID, role models.Role) ([]string, error)
	SetPermissions(ctx context.Context, outletID uuid.UUID, role models.Role, perms []string, ttl time.Duration) error

	// Analytics caching
	GetSalesSummary(ctx context.Context, outletID uuid.UUID, period string) (*models.SalesSummary, error)
	SetSalesSummary(ctx context.Context, outletID uuid.UUID, period string, summary *models.SalesSummary, ttl time.Duration) error
	InvalidateAnalytics(ctx context.Context, outletID uuid.UUID) error

	// Billing idempotency
	GetIdempotentBill(ctx context.Context, outletID uuid.UUID, key string) (*models.Bill, error)
	SetIdempotentBill(ctx context.Context, outletID uuid.UUID, key string, bill *models.Bill, ttl time.Duration) error

	// Cache invalidation
	InvalidateOutletCache(ctx context.Context, outletID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient accepts either host:port or a redis:// / rediss:// address.
func NewRedisClient(addr, password string, db int) *redis.Client {
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
		logrus.WithError(pingErr).WithField("addr", parsedAddr).Warn("redis ping failed on initialization")
	} else {
		logrus.WithField("addr", parsedAddr).Debug("redis connection established")
	}
	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// getJSON reports a cache miss as (false, nil).
func (r *redisCacheService) getJSON(ctx context.Context, k string, dst interface{}) (bool, error) {
	data, err := r.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, k string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, k, data, ttl).Err()
}

func (r *redisCacheService) GetItem(ctx context.Context, outletID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	ok, err := r.getJSON(ctx, key("item", outletID.String(), itemID.String()), &item)
	if err != nil || !ok {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	return r.setJSON(ctx, key("item", item.OutletID.String(), item.ID.String()), item, ttl)
}

func (r *redisCacheService) DeleteItem(ctx context.Context, outletID, itemID uuid.UUID) error {
	return r.client.Del(ctx, key("item", outletID.String(), itemID.String())).Err()
}

func (r *redisCacheService) GetSettings(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error) {
	var settings models.OutletSettings
	ok, err := r.getJSON(ctx, key("settings", outletID.String()), &settings)
	if err != nil || !ok {
		return nil, err
	}
	return &settings, nil
}

func (r *redisCacheService) SetSettings(ctx context.Context, settings *models.OutletSettings, ttl time.Duration) error {
	return r.setJSON(ctx, key("settings", settings.OutletID.String()), settings, ttl)
}

func (r *redisCacheService) DeleteSettings(ctx context.Context, outletID uuid.UUID) error {
	return r.client.Del(ctx, key("settings", outletID.String())).Err()
}

func (r *redisCacheService) GetPermissions(ctx context.Context, outletID uuid.UUID, role models.Role) ([]string, error) {
	var perms []string
	ok, err := r.getJSON(ctx, key("perms", outletID.String(), string(role)), &perms)
	if err != nil || !ok {
		return nil, err
	}
	return perms, nil
}

func (r *redisCacheService) SetPermissions(ctx context.Context, outletID uuid.UUID, role models.Role, perms []string, ttl time.Duration) error {
	return r.setJSON(ctx, key("perms", outletID.String(), string(role)), perms, ttl)
}

func (r *redisCacheService) GetSalesSummary(ctx context.Context, outletID uuid.UUID, period string) (*models.SalesSummary, error) {
	var summary models.SalesSummary
	ok, err := r.getJSON(ctx, key("analytics", outletID.String(), period), &summary)
	if err != nil || !ok {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetSalesSummary(ctx context.Context, outletID uuid.UUID, period string, summary *models.SalesSummary, ttl time.Duration) error {
	return r.setJSON(ctx, key("analytics", outletID.String(), period), summary, ttl)
}

func (r *redisCacheService) InvalidateAnalytics(ctx context.Context, outletID uuid.UUID) error {
	return r.deletePattern(ctx, key("analytics", outletID.String(), "*"))
}

func (r *redisCacheService) GetIdempotentBill(ctx context.Context, outletID uuid.UUID, idemKey string) (*models.Bill, error) {
	var bill models.Bill
	ok, err := r.getJSON(ctx, key("idem", outletID.String(), idemKey), &bill)
	if err != nil || !ok {
		return nil, err
	}
	return &bill, nil
}

func (r *redisCacheService) SetIdempotentBill(ctx context.Context, outletID uuid.UUID, idemKey string, bill *models.Bill, ttl time.Duration) error {
	return r.setJSON(ctx, key("idem", outletID.String(), idemKey), bill, ttl)
}

// InvalidateOutletCache drops everything cached for the outlet except idempotency keys.
func (r *redisCacheService) InvalidateOutletCache(ctx context.Context, outletID uuid.UUID) error {
	for _, kind := range []string{"item", "settings", "perms", "analytics"} {
		if err := r.deletePattern(ctx, fmt.Sprintf("%s:%s:%s*", keyPrefix, kind, outletID.String())); err != nil {
			return err
		}
	}
	return nil
}

func (r *redisCacheService) deletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, k string, limit int, window time.Duration) (bool, error) {
	cacheKey := key("ratelimit", k)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
