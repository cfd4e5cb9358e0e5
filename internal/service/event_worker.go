package service

import (
	"context"
	"encoding/json"

	"staking-core/internal/event"
	"staking-core/internal/service/mq"
	"staking-core/pkg/logger"

	"go.uber.org/zap"
)

// EventWorker 质押事件审计消费者
// 订阅 staking:events:stake 并把生命周期事件落到审计日志。
// 过期预警是重点: "钱已转账未记" 的线索不能只留在发布方进程里，
// 必须有独立的消费方把它持续暴露给运维。
type EventWorker struct {
	consumer mq.Consumer
}

func NewEventWorker(consumer mq.Consumer) *EventWorker {
	return &EventWorker{consumer: consumer}
}

// Run 阻塞消费，ctx 取消后返回
func (w *EventWorker) Run(ctx context.Context) error {
	return w.consumer.Subscribe(ctx, event.TopicStake, w.handle)
}

func (w *EventWorker) handle(msg *mq.Message) error {
	var ev event.StakeEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		// 格式错误的消息重投也无意义，记录后按处理成功消化掉
		logger.Warn("质押事件解析失败", zap.String("id", msg.ID), zap.Error(err))
		return nil
	}

	switch ev.Type {
	case event.StakeExpired:
		logger.Error("审计: 在途意向过期，请核对链上转账与后端账目",
			zap.Uint64("user_id", ev.UserID),
			zap.Uint64("package_id", ev.PackageID),
			zap.String("tx_hash", ev.TxHash),
			zap.String("amount", ev.Amount))
	case event.StakeConfirmed:
		logger.Info("审计: 质押已确认",
			zap.Uint64("user_id", ev.UserID),
			zap.String("tx_hash", ev.TxHash))
	case event.StakeSubmitted, event.StakeCancelled:
		logger.Info("审计: 质押事件",
			zap.String("type", ev.Type),
			zap.Uint64("user_id", ev.UserID),
			zap.String("tx_hash", ev.TxHash))
	default:
		logger.Debug("审计: 未知事件类型", zap.String("type", ev.Type))
	}
	return nil
}
