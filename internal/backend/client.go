package backend

import (
	"context"
	"fmt"
	"time"

	"staking-core/pkg/errno"
	"staking-core/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client 记账后端 (system of record) 接口
// 余额与 Staking 记录以后端为准，本服务从不代写。
type Client interface {
	// ConfirmStake 请求后端为一笔已上链的转账落账
	// 后端按 txHash 幂等去重，同一哈希重复提交不会产生重复 Staking 记录，
	// 因此调用方可以无限次重试。
	ConfirmStake(ctx context.Context, txHash string, packageID, userID uint64) error

	// ReferralSummary 拉取后端聚合的推荐统计 (用于与本地重算结果比对)
	ReferralSummary(ctx context.Context, userID uint64) (*ReferralSummary, error)
}

// LevelSummary 单层推荐统计
type LevelSummary struct {
	Count         int             `json:"count"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
}

// ReferralSummary 后端推荐统计响应
type ReferralSummary struct {
	Overall struct {
		TotalReferrals int             `json:"totalReferrals"`
		TotalInvested  decimal.Decimal `json:"totalInvested"`
		TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	} `json:"overall"`
	ByLevel         map[int]LevelSummary `json:"byLevel"`
	RecentReferrals []RecentReferral     `json:"recentReferrals"`
}

// RecentReferral 近期被推荐用户摘要
type RecentReferral struct {
	UserID    uint64    `json:"userId"`
	Username  string    `json:"username"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}

type confirmRequest struct {
	TxHash    string `json:"txHash"`
	PackageID uint64 `json:"packageId"`
	UserID    uint64 `json:"userId"`
}

type confirmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RestClient 基于 resty 的 Client 实现
type RestClient struct {
	http *resty.Client
}

func NewRestClient(baseURL string, timeout time.Duration) *RestClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &RestClient{http: client}
}

func (c *RestClient) ConfirmStake(ctx context.Context, txHash string, packageID, userID uint64) error {
	var result confirmResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(confirmRequest{TxHash: txHash, PackageID: packageID, UserID: userID}).
		SetResult(&result).
		Post("/api/staking/confirm")
	if err != nil {
		logger.Error("后端确认请求失败", zap.String("tx_hash", txHash), zap.Error(err))
		return errno.ErrConfirmationFailed
	}
	if resp.IsError() || !result.Success {
		logger.Warn("后端拒绝确认",
			zap.String("tx_hash", txHash),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", result.Message))
		return errno.ErrConfirmationFailed
	}

	return nil
}

func (c *RestClient) ReferralSummary(ctx context.Context, userID uint64) (*ReferralSummary, error) {
	var summary ReferralSummary

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("userId", fmt.Sprintf("%d", userID)).
		SetResult(&summary).
		Get("/api/referrals/summary")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("referral summary request failed with status %d", resp.StatusCode())
	}

	return &summary, nil
}
