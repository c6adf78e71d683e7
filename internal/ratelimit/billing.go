package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/workhub/internal/config"
)

const (
	keyPricingPrincipal = "billing:pricing:principal:%s"
	keyPayoutLock       = "billing:payout:lock:%s"
)

// BillingLimiter throttles checkout pricing lookups and serialises payout
// creation per tenant. A nil limiter allows everything.
type BillingLimiter struct {
	pricing *bucket
	payouts *mutex
}

func NewBillingLimiter(cfg config.Config) (*BillingLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.PricingRate <= 0 || limitCfg.PricingBurst <= 0 {
		return nil, errors.New("pricing rate limit must be positive")
	}
	ttl := time.Duration(limitCfg.PayoutLockTTLSec) * time.Second
	if ttl <= 0 {
		return nil, errors.New("payout lock ttl must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	return newBillingLimiter(client, limitCfg.PricingRate, limitCfg.PricingBurst, ttl), nil
}

func newBillingLimiter(client redis.Cmdable, rate float64, burst int, ttl time.Duration) *BillingLimiter {
	return &BillingLimiter{
		pricing: newBucket(client, rate, burst),
		payouts: newMutex(client, ttl),
	}
}

func (l *BillingLimiter) Enabled() bool {
	return l != nil && l.pricing != nil
}

func (l *BillingLimiter) AllowPricing(ctx context.Context, principalID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyPricingPrincipal, strings.TrimSpace(principalID))
	return l.pricing.take(ctx, key)
}

func (l *BillingLimiter) TryLockPayout(ctx context.Context, companyID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.payouts.acquire(ctx, fmt.Sprintf(keyPayoutLock, strings.TrimSpace(companyID)))
}

func (l *BillingLimiter) ReleasePayout(ctx context.Context, companyID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.payouts.release(ctx, fmt.Sprintf(keyPayoutLock, strings.TrimSpace(companyID)), token)
}
