// Package usercache keeps user profiles and permission lists in Redis in
// front of the auth service.
package usercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sharath018/expo-event-service/internal/event"
)

const (
	defaultProfileTTL    = time.Hour
	defaultPermissionTTL = 12 * time.Hour
)

// UserLookup loads a user profile from its source of truth.
type UserLookup interface {
	FindUser(ctx context.Context, userID string) (*event.UserInfo, error)
}

// ProfileCache answers timezone and language preferences. Profiles are
// cached as JSON; a Redis failure degrades to the lookup, an unknown user
// to the configured defaults.
type ProfileCache struct {
	client          *redis.Client
	users           UserLookup
	ttl             time.Duration
	defaultTimezone string
	defaultLanguage string
	log             *zap.Logger
}

var _ event.ProfileResolver = (*ProfileCache)(nil)

type ProfileOptions struct {
	TTL             time.Duration
	DefaultTimezone string
	DefaultLanguage string
}

func NewProfileCache(client *redis.Client, users UserLookup, opts ProfileOptions, log *zap.Logger) *ProfileCache {
	if opts.TTL <= 0 {
		opts.TTL = defaultProfileTTL
	}
	if opts.DefaultTimezone == "" {
		opts.DefaultTimezone = "UTC"
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileCache{
		client:          client,
		users:           users,
		ttl:             opts.TTL,
		defaultTimezone: opts.DefaultTimezone,
		defaultLanguage: opts.DefaultLanguage,
		log:             log,
	}
}

func profileKey(userID string) string {
	return fmt.Sprintf("user:profile:%s", userID)
}

func (p *ProfileCache) Timezone(ctx context.Context, userID string) string {
	u, err := p.FindUser(ctx, userID)
	if err != nil || u.Timezone == "" {
		return p.defaultTimezone
	}
	if _, err := time.LoadLocation(u.Timezone); err != nil {
		p.log.Warn("⚠️ invalid profile timezone", zap.String("user_id", userID), zap.String("timezone", u.Timezone))
		return p.defaultTimezone
	}
	return u.Timezone
}

func (p *ProfileCache) Language(ctx context.Context, userID string) string {
	u, err := p.FindUser(ctx, userID)
	if err != nil || u.Language == "" {
		return p.defaultLanguage
	}
	return u.Language
}

func (p *ProfileCache) FindUser(ctx context.Context, userID string) (*event.UserInfo, error) {
	if userID == "" {
		return nil, event.ErrRecordNotFound
	}

	key := profileKey(userID)
	raw, err := p.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var u event.UserInfo
		if jsonErr := json.Unmarshal(raw, &u); jsonErr == nil {
			return &u, nil
		}
		p.log.Warn("⚠️ dropping unreadable cached profile", zap.String("user_id", userID))
	case !errors.Is(err, redis.Nil):
		p.log.Warn("⚠️ profile cache unavailable", zap.String("user_id", userID), zap.Error(err))
	}

	u, err := p.users.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if buf, err := json.Marshal(u); err == nil {
		if err := p.client.Set(ctx, key, buf, p.ttl).Err(); err != nil {
			p.log.Warn("⚠️ failed to cache profile", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return u, nil
}

// Invalidate drops the cached profile of userID.
func (p *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	if err := p.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate profile: %w", err)
	}
	return nil
}
