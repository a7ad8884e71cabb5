package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/pkg"
)

const (
	DefaultTTL     = 24 * 7 * time.Hour
	tokenKeyPrefix = "practice-session||"
)

// Tokens maps opaque bearer tokens to user ids. Tokens are issued by the
// identity provider in front of this service and live in redis with a TTL.
type Tokens struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewTokens(ttl time.Duration, redisClient *redis.Client) *Tokens {
	return &Tokens{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (t *Tokens) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id empty")
	}

	token, err := t.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	if err := t.redisClient.Set(ctx, tokenKeyPrefix+token, userID, t.ttl).Err(); err != nil {
		return "", practice.StoreError("tokens.issue", err)
	}

	return token, nil
}

// Resolve returns the user id bound to token, or practice.ErrNotAuthenticated
// for unknown and expired tokens.
func (t *Tokens) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", practice.ErrNotAuthenticated
	}

	userID, err := t.redisClient.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", practice.ErrNotAuthenticated
	}
	if err != nil {
		return "", practice.StoreError("tokens.resolve", err)
	}
	if userID == "" {
		return "", practice.ErrNotAuthenticated
	}

	return userID, nil
}

func (t *Tokens) Revoke(ctx context.Context, token string) (bool, error) {
	deleted, err := t.redisClient.Del(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", practice.StoreError("tokens.revoke", err))
	}
	log.Debugf("auth tokens, revoked: %t", deleted > 0)
	return deleted > 0, nil
}
