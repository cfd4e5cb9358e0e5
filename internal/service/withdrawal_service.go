package service

import (
	"context"

	"staking-core/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalView 提现申请 + 展示时推导的净额
type WithdrawalView struct {
	model.WithdrawalRequest
	NetAmount decimal.Decimal `json:"net_amount"`
}

// WithdrawalService 提现申请查询
// 净额永远不落库: 按申请上记录的费率在读取时推导。
type WithdrawalService struct {
	db       *gorm.DB
	settings *SettingsService
}

func NewWithdrawalService(db *gorm.DB, settings *SettingsService) *WithdrawalService {
	return &WithdrawalService{db: db, settings: settings}
}

// List 用户的提现申请列表
func (s *WithdrawalService) List(ctx context.Context, userID uint64) ([]WithdrawalView, error) {
	var requests []model.WithdrawalRequest
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&requests).Error; err != nil {
		return nil, err
	}

	views := make([]WithdrawalView, 0, len(requests))
	for _, req := range requests {
		views = append(views, WithdrawalView{
			WithdrawalRequest: req,
			NetAmount:         NetWithdrawal(req.Amount, req.FeePercent),
		})
	}
	return views, nil
}

// Quote 按当前费率试算一笔提现的净额
func (s *WithdrawalService) Quote(ctx context.Context, gross decimal.Decimal) (decimal.Decimal, error) {
	feePercent, err := s.settings.WithdrawalFeePercent(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return NetWithdrawal(gross, feePercent), nil
}
