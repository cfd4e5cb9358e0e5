package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	"staking-core/internal/backend"
	"staking-core/internal/event"
	"staking-core/internal/model"
	"staking-core/internal/service/mq"
	"staking-core/internal/store"
	"staking-core/internal/wallet"
	"staking-core/pkg/errno"
	"staking-core/pkg/logger"
	"staking-core/pkg/monitor"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StakeService 质押确认协调器
//
// 把一次用户发起的转账变成一条持久化的质押记录，核心在于
// 链上转账和后端记账是两个没有共享事务的独立系统：
// 转账上链后立刻写入本地持久意向 (持久化边界)，显式确认成功后才清除。
// 两步之间允许页面刷新、进程重启、无限次确认重试 (后端按 txHash 幂等)。
//
// 状态流: Idle -> WalletPending -> TransferPending -> AwaitingConfirmation
//        -> Confirmed | Cancelled | Expired
// 持久意向只在 AwaitingConfirmation 存在，之前的任何失败都不留痕。
type StakeService struct {
	db       *gorm.DB
	gateway  wallet.Gateway
	store    *store.PendingStakeStore
	backend  backend.Client
	settings *SettingsService
	producer mq.Producer

	chainID      *big.Int
	usdtAddress  string
	usdtDecimals int32
}

type StakeConfig struct {
	ChainID      int64
	UsdtAddress  string
	UsdtDecimals int32
}

func NewStakeService(
	db *gorm.DB,
	gateway wallet.Gateway,
	pendingStore *store.PendingStakeStore,
	backendClient backend.Client,
	settings *SettingsService,
	producer mq.Producer,
	cfg StakeConfig,
) *StakeService {
	return &StakeService{
		db:           db,
		gateway:      gateway,
		store:        pendingStore,
		backend:      backendClient,
		settings:     settings,
		producer:     producer,
		chainID:      big.NewInt(cfg.ChainID),
		usdtAddress:  cfg.UsdtAddress,
		usdtDecimals: cfg.UsdtDecimals,
	}
}

// Start 发起一次质押: 校验钱包与链 -> 提交转账 -> 持久化在途意向
// 转账上链前的任何失败都直接返回，不写任何持久状态；
// 意向写入完成后才向调用方报告成功 (write-then-acknowledge)。
func (s *StakeService) Start(ctx context.Context, userID, packageID uint64) (*model.PendingStakeIntent, error) {
	// 0. 已有未确认意向时拒绝二次质押，防止本地记录被静默覆盖
	//    (覆盖会让上一笔已上链、未记账的转账从 UI 里永久消失)
	existing, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, errno.ErrIntentExpired) {
		return nil, err
	}
	if existing != nil {
		return nil, errno.ErrStakePending
	}

	// 1. 加载用户与套餐
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrUserNotFound
		}
		return nil, err
	}
	var pkg model.StakingPackage
	if err := s.db.WithContext(ctx).First(&pkg, packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrPackageNotFound
		}
		return nil, err
	}

	// 2. WalletPending: 连接钱包并校验归属
	if _, err := s.gateway.Connect(ctx, user.WalletAddress); err != nil {
		return nil, err
	}
	if err := s.gateway.EnsureChain(ctx, s.chainID); err != nil {
		return nil, err
	}

	// 3. TransferPending: 按当前币价换算 USDT 金额并提交转账
	tokenPrice, err := s.settings.TokenPrice(ctx)
	if err != nil {
		return nil, err
	}
	platformWallet, err := s.settings.PlatformWalletAddress(ctx)
	if err != nil {
		return nil, err
	}
	usdtAmount := pkg.StakeAmount.Mul(tokenPrice)

	start := time.Now()
	txHash, err := s.gateway.SubmitTransfer(ctx, s.usdtAddress, platformWallet, usdtAmount, s.usdtDecimals)
	if err != nil {
		// 链上什么都没发生 (或转账失败)，回到 Idle，无持久痕迹
		return nil, err
	}
	if monitor.Business != nil {
		monitor.Business.TransferDuration.Observe(time.Since(start).Seconds())
	}

	// 4. 持久化边界: 从这里开始，链上转账已发生，必须先落盘再报成功
	intent := &model.PendingStakeIntent{
		TxHash:      txHash,
		PackageID:   pkg.ID,
		UserID:      userID,
		PackageName: pkg.Name,
		Amount:      usdtAmount,
		Timestamp:   time.Now().UnixMilli(),
	}
	if err := s.store.Put(ctx, intent); err != nil {
		// 钱已转但意向没落盘，这是本设计唯一无法自愈的缺口，必须大声记录
		logger.Error("转账已上链但意向持久化失败，需要人工对账",
			zap.Uint64("user_id", userID),
			zap.String("tx_hash", txHash),
			zap.String("amount", usdtAmount.String()),
			zap.Error(err))
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.StakeSubmittedTotal.Inc()
	}
	s.publish(ctx, event.StakeSubmitted, intent)

	logger.Info("质押转账已上链，等待用户确认",
		zap.Uint64("user_id", userID),
		zap.Uint64("package_id", pkg.ID),
		zap.String("tx_hash", txHash))
	return intent, nil
}

// Confirm 显式确认: 将在途意向提交给后端落账
// 成功才清除意向；失败保留意向，同一 txHash 可以无限次重试
// (重复落账由后端按 txHash 幂等去重)。
func (s *StakeService) Confirm(ctx context.Context, userID uint64) error {
	intent, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errno.ErrIntentExpired) && monitor.Business != nil {
			monitor.Business.IntentExpiredTotal.Inc()
		}
		return err
	}
	if intent == nil {
		return errno.ErrNoPendingStake
	}

	if err := s.backend.ConfirmStake(ctx, intent.TxHash, intent.PackageID, userID); err != nil {
		// 意向保留，可重试；绝不在失败时清除，否则 "钱已转账未记" 会被静默吞掉
		if monitor.Business != nil {
			monitor.Business.ConfirmFailedTotal.Inc()
		}
		return errno.ErrConfirmationFailed
	}

	// 后端已是该 Staking 记录的唯一所有者，本地桥梁使命完成
	if err := s.store.Clear(ctx, userID); err != nil {
		logger.Warn("确认成功但清除意向失败，将由 TTL 兜底",
			zap.Uint64("user_id", userID), zap.Error(err))
	}

	if monitor.Business != nil {
		monitor.Business.StakeConfirmedTotal.Inc()
	}
	s.publish(ctx, event.StakeConfirmed, intent)

	logger.Info("质押确认完成",
		zap.Uint64("user_id", userID),
		zap.String("tx_hash", intent.TxHash))
	return nil
}

// Cancel 用户主动丢弃本地意向
// 只是丢弃本地记录，链上转账不可由本系统撤回。
func (s *StakeService) Cancel(ctx context.Context, userID uint64) error {
	intent, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if intent == nil {
		return errno.ErrNoPendingStake
	}

	if err := s.store.Clear(ctx, userID); err != nil {
		return err
	}

	if monitor.Business != nil {
		monitor.Business.StakeCancelledTotal.Inc()
	}
	s.publish(ctx, event.StakeCancelled, intent)
	return nil
}

// Pending 查询当前在途意向 (页面刷新/重启后恢复用)
func (s *StakeService) Pending(ctx context.Context, userID uint64) (*model.PendingStakeIntent, error) {
	return s.store.Get(ctx, userID)
}

// Packages 质押套餐目录 (只读)
func (s *StakeService) Packages(ctx context.Context) ([]model.StakingPackage, error) {
	var packages []model.StakingPackage
	if err := s.db.WithContext(ctx).Order("id").Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

// Stakings 用户的已确认质押列表 (后端为记录所有者，这里只读)
func (s *StakeService) Stakings(ctx context.Context, userID uint64) ([]model.Staking, error) {
	var stakings []model.Staking
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_date desc").Find(&stakings).Error; err != nil {
		return nil, err
	}
	return stakings, nil
}

func (s *StakeService) publish(ctx context.Context, eventType string, intent *model.PendingStakeIntent) {
	if s.producer == nil {
		return
	}

	payload, err := json.Marshal(event.StakeEvent{
		Type:       eventType,
		UserID:     intent.UserID,
		PackageID:  intent.PackageID,
		TxHash:     intent.TxHash,
		Amount:     intent.Amount.String(),
		OccurredAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	// 事件只是旁路通知，发布失败不影响主流程
	if err := s.producer.Publish(ctx, event.TopicStake, intent.TxHash, payload); err != nil {
		logger.Warn("质押事件发布失败", zap.String("type", eventType), zap.Error(err))
	}
}
