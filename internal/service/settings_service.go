package service

import (
	"context"
	"errors"
	"time"

	"staking-core/internal/model"
	"staking-core/pkg/cache"
	"staking-core/pkg/errno"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 外部后台维护的设置键
const (
	SettingWithdrawalFeePercent  = "withdrawal_fee_percentage"
	SettingTokenPrice            = "token_price"
	SettingPlatformWalletAddress = "platform_wallet_address"
)

const settingsCacheTTL = time.Minute

// SettingsService 只读设置查询，带一层短 TTL 缓存
// 设置由外部后台写入，本服务只消费字符串值。
type SettingsService struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewSettingsService(db *gorm.DB, c cache.Cache) *SettingsService {
	return &SettingsService{db: db, cache: c}
}

// Get 读取设置值
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	cacheKey := "setting_" + key

	var value string
	if err := s.cache.Get(ctx, cacheKey, &value); err == nil {
		return value, nil
	}

	var setting model.Setting
	if err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errno.Errno{Code: errno.ErrDatabase.Code, Message: "setting not found: " + key}
		}
		return "", err
	}

	_ = s.cache.Set(ctx, cacheKey, setting.Value, settingsCacheTTL)
	return setting.Value, nil
}

// GetDecimal 读取 decimal 设置值
func (s *SettingsService) GetDecimal(ctx context.Context, key string) (decimal.Decimal, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(value)
}

// WithdrawalFeePercent 当前提现费率(%)
func (s *SettingsService) WithdrawalFeePercent(ctx context.Context) (decimal.Decimal, error) {
	return s.GetDecimal(ctx, SettingWithdrawalFeePercent)
}

// TokenPrice 当前代币价格 (USDT 计)
func (s *SettingsService) TokenPrice(ctx context.Context) (decimal.Decimal, error) {
	return s.GetDecimal(ctx, SettingTokenPrice)
}

// PlatformWalletAddress 平台收款地址
func (s *SettingsService) PlatformWalletAddress(ctx context.Context) (string, error) {
	return s.Get(ctx, SettingPlatformWalletAddress)
}
