package usercache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PermissionSource lists the permissions a user holds in an organization.
type PermissionSource interface {
	UserPermissions(ctx context.Context, userID string, organizationID uint) ([]string, error)
}

// PermissionCache keeps per-user permission lists in Redis lists that
// expire after twelve hours. Empty lists are never cached.
type PermissionCache struct {
	client *redis.Client
	source PermissionSource
	ttl    time.Duration
	log    *zap.Logger
}

func NewPermissionCache(client *redis.Client, source PermissionSource, ttl time.Duration, log *zap.Logger) *PermissionCache {
	if ttl <= 0 {
		ttl = defaultPermissionTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PermissionCache{client: client, source: source, ttl: ttl, log: log}
}

func permissionKey(userID string, organizationID uint) string {
	return fmt.Sprintf("user:permissions:%s:%d", userID, organizationID)
}

// Permissions returns the cached list, loading it from the source on a miss.
func (p *PermissionCache) Permissions(ctx context.Context, userID string, organizationID uint) ([]string, error) {
	key := permissionKey(userID, organizationID)

	cached, err := p.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		p.log.Warn("⚠️ permission cache unavailable", zap.String("user_id", userID), zap.Error(err))
	} else if len(cached) > 0 {
		return cached, nil
	}

	perms, err := p.source.UserPermissions(ctx, userID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	if len(perms) == 0 {
		return perms, nil
	}

	values := make([]interface{}, len(perms))
	for i, perm := range perms {
		values[i] = perm
	}
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, values...)
		pipe.Expire(ctx, key, p.ttl)
		return nil
	})
	if err != nil {
		p.log.Warn("⚠️ failed to cache permissions", zap.String("user_id", userID), zap.Error(err))
	}
	return perms, nil
}

// HasPermission implements middleware.PermissionChecker.
func (p *PermissionCache) HasPermission(ctx context.Context, userID string, organizationID uint, permission string) (bool, error) {
	perms, err := p.Permissions(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	for _, perm := range perms {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cached list, e.g. after a role change.
func (p *PermissionCache) Invalidate(ctx context.Context, userID string, organizationID uint) error {
	if err := p.client.Del(ctx, permissionKey(userID, organizationID)).Err(); err != nil {
		return fmt.Errorf("invalidate permissions: %w", err)
	}
	return nil
}
