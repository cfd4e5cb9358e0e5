package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staking-core/internal/model"
	"staking-core/pkg/cache"
	"staking-core/pkg/errno"
	"staking-core/pkg/logger"

	"go.uber.org/zap"
)

// TTL 在途意向的固定存活时间
const TTL = 24 * time.Hour

const keyPrefix = "pendingStaking_"

// PendingStakeStore 每用户单条在途质押意向的持久存储
// 每个 userId 只保留一条记录，Put 覆盖写 (last-writer-wins，由底层
// 单键 SET 保证原子性)。底层缓存 TTL 和记录内 timestamp 双重判定过期：
// 前者负责真实回收，后者保证读取语义精确且可在测试中注入时钟。
type PendingStakeStore struct {
	cache cache.Cache
	now   func() time.Time
}

func NewPendingStakeStore(c cache.Cache) *PendingStakeStore {
	return &PendingStakeStore{
		cache: c,
		now:   time.Now,
	}
}

func key(userID uint64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Put 写入 (覆盖) 用户的在途意向
func (s *PendingStakeStore) Put(ctx context.Context, intent *model.PendingStakeIntent) error {
	return s.cache.Set(ctx, key(intent.UserID), intent, TTL)
}

// Get 读取用户的在途意向
// 不存在返回 (nil, nil)；发现已过期的残留记录时就地清除，
// 返回 (nil, errno.ErrIntentExpired) 供调用方向用户提示人工对账。
func (s *PendingStakeStore) Get(ctx context.Context, userID uint64) (*model.PendingStakeIntent, error) {
	var intent model.PendingStakeIntent
	err := s.cache.Get(ctx, key(userID), &intent)
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.now().Sub(intent.CreatedAt()) >= TTL {
		// 惰性清除
		if err := s.cache.Delete(ctx, key(userID)); err != nil {
			logger.Warn("清除过期意向失败", zap.Uint64("user_id", userID), zap.Error(err))
		}
		logger.Warn("在途意向已过期，链上转账可能缺少对应账目",
			zap.Uint64("user_id", userID),
			zap.String("tx_hash", intent.TxHash))
		return nil, errno.ErrIntentExpired
	}

	return &intent, nil
}

// Clear 删除用户的在途意向
func (s *PendingStakeStore) Clear(ctx context.Context, userID uint64) error {
	return s.cache.Delete(ctx, key(userID))
}

// Sweep 扫描所有在途意向并清除已过期的，返回被清除的意向
// 过期回收不依赖 Sweep (底层缓存 TTL 与惰性读清除都会兜底)，
// Sweep 只是为了及时暴露 "钱已转账未记" 的异常。
func (s *PendingStakeStore) Sweep(ctx context.Context) ([]model.PendingStakeIntent, error) {
	keys, err := s.cache.Keys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, err
	}

	var expired []model.PendingStakeIntent
	for _, k := range keys {
		var intent model.PendingStakeIntent
		if err := s.cache.Get(ctx, k, &intent); err != nil {
			continue
		}
		if s.now().Sub(intent.CreatedAt()) >= TTL {
			if err := s.cache.Delete(ctx, k); err == nil {
				expired = append(expired, intent)
				logger.Warn("Sweep: 清除过期意向",
					zap.Uint64("user_id", intent.UserID),
					zap.String("tx_hash", intent.TxHash))
			}
		}
	}
	return expired, nil
}
