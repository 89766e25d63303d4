package revoke

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "taskmanager:revoked:"

// List 是基于 Redis 的令牌吊销列表。
//
// 登出时把令牌 ID 写入，TTL 等于令牌剩余有效期；之后中间件拒绝该令牌。
// nil 安全：未配置 Redis 时所有操作直接通过。
type List struct {
	rdb *redis.Client
}

func NewList(rdb *redis.Client) *List {
	return &List{rdb: rdb}
}

// Revoke 吊销指定令牌，ttl 为令牌剩余有效期。
func (l *List) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if l == nil || l.rdb == nil || tokenID == "" {
		return nil
	}
	if ttl <= 0 {
		return nil // 已过期的令牌无需入列
	}
	if err := l.rdb.Set(ctx, keyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke set: %w", err)
	}
	return nil
}

// IsRevoked 查询令牌是否已被吊销。
//
// Redis 不可用时返回 false：吊销列表降级为原始的纯客户端登出语义，
// 不能因此把所有用户挡在门外。
func (l *List) IsRevoked(ctx context.Context, tokenID string) bool {
	if l == nil || l.rdb == nil || tokenID == "" {
		return false
	}
	n, err := l.rdb.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return n > 0
}
