package ratelimit

import (
	"context"
	"strings"

	"github.com/nexusverde/console/internal/config"
	"go.uber.org/zap"
)

// LoginLimiter throttles sign-in attempts per client address. A nil limiter
// or a redis failure allows the attempt: the limiter protects against brute
// force, it must not lock operators out when redis is down.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewLoginLimiter(cfg config.Config, bucket *TokenBucket, log *zap.Logger) *LoginLimiter {
	if !cfg.RateLimit.Enabled || bucket == nil {
		return nil
	}
	return &LoginLimiter{
		bucket: bucket,
		rate:   cfg.RateLimit.LoginRate,
		burst:  cfg.RateLimit.LoginBurst,
		log:    log.Named("ratelimit.login"),
	}
}

func (l *LoginLimiter) Allow(ctx context.Context, clientIP string) bool {
	if l == nil {
		return true
	}
	ip := strings.TrimSpace(clientIP)
	if ip == "" {
		return true
	}

	result, err := l.bucket.Allow(ctx, "login:"+ip, l.rate, l.burst)
	if err != nil {
		l.log.Warn("login rate limit check failed, allowing attempt", zap.Error(err))
		return true
	}
	return result.Allowed
}
