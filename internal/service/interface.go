package service

import (
	"context"

	"staking-core/internal/model"
)

// StakeCoordinator 质押生命周期协调器接口 (handler 依赖该接口，便于测试替换)
type StakeCoordinator interface {
	// Start 发起质押: 校验钱包 -> 转账 -> 持久化在途意向
	Start(ctx context.Context, userID, packageID uint64) (*model.PendingStakeIntent, error)

	// Confirm 将在途意向提交后端落账，成功才清除本地记录
	Confirm(ctx context.Context, userID uint64) error

	// Cancel 丢弃本地在途意向 (链上转账不可撤回)
	Cancel(ctx context.Context, userID uint64) error

	// Pending 查询在途意向
	Pending(ctx context.Context, userID uint64) (*model.PendingStakeIntent, error)

	// Packages 质押套餐目录
	Packages(ctx context.Context) ([]model.StakingPackage, error)

	// Stakings 用户已确认质押列表
	Stakings(ctx context.Context, userID uint64) ([]model.Staking, error)
}
