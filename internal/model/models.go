package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User 用户表 (钱包地址用于质押前的归属校验)
type User struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	Email         string    `gorm:"type:varchar(128)" json:"email"`
	WalletAddress string    `gorm:"type:varchar(255)" json:"wallet_address"`
	ReferrerID    *uint64   `gorm:"index" json:"referrer_id,omitempty"` // 每个用户最多一个推荐人 (森林不变量)
	CreatedAt     time.Time `json:"created_at"`
}

// StakingPackage 质押套餐目录 (外部后台创建，本服务只读)
type StakingPackage struct {
	ID                uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string          `gorm:"type:varchar(100);not null" json:"name"`
	StakeAmount       decimal.Decimal `gorm:"type:decimal(32,18);not null" json:"stake_amount"`
	DailyYieldPercent decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"daily_yield_percent"`
	LockPeriodDays    int             `gorm:"not null" json:"lock_period_days"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Staking 已确认质押 (仅由后端在确认成功后创建，本服务从不伪造)
type Staking struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint64          `gorm:"not null;index" json:"user_id"`
	PackageID      uint64          `gorm:"not null;index" json:"package_id"`
	StakeAmount    decimal.Decimal `gorm:"type:decimal(32,18);not null" json:"stake_amount"`
	Status         string          `gorm:"type:varchar(20);not null" json:"status"` // active, completed, free_staking
	TxHash         string          `gorm:"type:varchar(255);uniqueIndex" json:"tx_hash"`
	StartDate      time.Time       `gorm:"not null" json:"start_date"`
	LastRewardDate *time.Time      `json:"last_reward_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// WithdrawalRequest 提现申请
// 净额不落库，展示时按当前费率推导，避免费率变更后产生口径漂移
type WithdrawalRequest struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint64          `gorm:"not null;index" json:"user_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(32,18);not null" json:"amount"`         // 毛额
	Status     string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending, approved, rejected, completed
	FeePercent decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"fee_percent"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ReferralRelationship 推荐关系 (有向边 referrer -> referred)
type ReferralRelationship struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ReferrerID uint64    `gorm:"not null;index" json:"referrer_id"`
	ReferredID uint64    `gorm:"not null;uniqueIndex" json:"referred_id"` // 每个用户最多被推荐一次
	CreatedAt  time.Time `json:"created_at"`
}

// ReferralReward 按层级入账的推荐佣金流水
type ReferralReward struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint64          `gorm:"not null;index" json:"user_id"`      // 收益归属 (推荐人)
	FromUserID uint64          `gorm:"not null;index" json:"from_user_id"` // 产生收益的下级
	Level      int             `gorm:"not null" json:"level"`
	Amount     decimal.Decimal `gorm:"type:decimal(32,18);not null" json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Setting 外部后台维护的键值设置 (withdrawal_fee_percentage / token_price / platform_wallet_address)
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"type:varchar(255);not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (StakingPackage) TableName() string {
	return "staking_packages"
}

func (Staking) TableName() string {
	return "stakings"
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

func (ReferralRelationship) TableName() string {
	return "referral_relationships"
}

func (ReferralReward) TableName() string {
	return "referral_rewards"
}

func (Setting) TableName() string {
	return "settings"
}
