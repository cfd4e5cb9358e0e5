package service

import (
	"context"
	"encoding/json"
	"time"

	"staking-core/internal/event"
	"staking-core/internal/service/mq"
	"staking-core/internal/store"
	"staking-core/pkg/logger"
	"staking-core/pkg/monitor"
	"staking-core/pkg/utils/lock"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService 后台定时任务
type CronService struct {
	cron     *cron.Cron
	redis    *redis.Client
	store    *store.PendingStakeStore
	producer mq.Producer
}

func NewCronService(rdb *redis.Client, pendingStore *store.PendingStakeStore, producer mq.Producer) *CronService {
	return &CronService{
		cron:     cron.New(),
		redis:    rdb,
		store:    pendingStore,
		producer: producer,
	}
}

func (s *CronService) Start() {
	// 注册任务
	_, _ = s.cron.AddFunc("@every 10m", s.SweepExpiredIntents)

	s.cron.Start()
	logger.Info("Cron Service started")
}

func (s *CronService) Stop() {
	s.cron.Stop()
	logger.Info("Cron Service stopped")
}

// SweepExpiredIntents 清除过期在途意向并发布预警事件
// 回收本身有缓存 TTL 兜底，这个任务的价值是把 "钱已转账未记"
// 的异常尽早暴露出去，而不是等用户下次打开页面才发现。
func (s *CronService) SweepExpiredIntents() {
	ctx := context.Background()
	lockKey := "cron:lock:sweep_intents"

	// 1. 获取分布式锁，防止多实例同时执行
	locker := lock.NewRedisLock(s.redis)
	locked, err := locker.Acquire(ctx, lockKey, 10*time.Second)
	if err != nil || !locked {
		logger.Debug("SweepExpiredIntents: 获取锁失败或已有实例在运行")
		return
	}
	defer locker.Release(ctx, lockKey)

	// 2. 扫描并清除
	expired, err := s.store.Sweep(ctx)
	if err != nil {
		logger.Error("SweepExpiredIntents: 扫描失败", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	if monitor.Business != nil {
		monitor.Business.IntentExpiredTotal.Add(float64(len(expired)))
	}

	// 3. 逐条发布过期事件
	for _, intent := range expired {
		payload, err := json.Marshal(event.StakeEvent{
			Type:       event.StakeExpired,
			UserID:     intent.UserID,
			PackageID:  intent.PackageID,
			TxHash:     intent.TxHash,
			Amount:     intent.Amount.String(),
			OccurredAt: time.Now().UnixMilli(),
		})
		if err != nil {
			continue
		}
		if err := s.producer.Publish(ctx, event.TopicStake, intent.TxHash, payload); err != nil {
			logger.Warn("过期事件发布失败", zap.String("tx_hash", intent.TxHash), zap.Error(err))
		}
	}

	logger.Info("SweepExpiredIntents: 清理完成", zap.Int("expired", len(expired)))
}
