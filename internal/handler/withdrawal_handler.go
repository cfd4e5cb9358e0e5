package handler

import (
	"strconv"

	"staking-core/internal/handler/response"
	"staking-core/internal/service"
	"staking-core/pkg/errno"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WithdrawalHandler struct {
	svc *service.WithdrawalService
}

func NewWithdrawalHandler(svc *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{svc: svc}
}

// List 提现申请列表
// @Summary 提现申请列表 (净额按费率展示时推导)
// @Tags Withdrawal
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/withdrawals [get]
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	views, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, errno.ErrDatabase)
		return
	}
	response.Success(c, views)
}

// Quote 按当前费率试算净额
// @Summary 提现净额试算
// @Tags Withdrawal
// @Produce json
// @Param amount query string true "Gross amount"
// @Success 200 {object} response.Response
// @Router /api/v1/withdrawals/quote [get]
func (h *WithdrawalHandler) Quote(c *gin.Context) {
	gross, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	net, err := h.svc.Quote(c.Request.Context(), gross)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"gross": gross,
		"net":   net,
	})
}
