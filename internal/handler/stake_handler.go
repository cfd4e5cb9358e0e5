package handler

import (
	"strconv"

	"staking-core/internal/handler/request"
	"staking-core/internal/handler/response"
	"staking-core/internal/service"
	"staking-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

type StakeHandler struct {
	svc service.StakeCoordinator
}

func NewStakeHandler(svc service.StakeCoordinator) *StakeHandler {
	return &StakeHandler{svc: svc}
}

// Start 发起质押
// @Summary 发起质押
// @Description 校验钱包归属和链，提交转账并持久化在途意向
// @Tags Staking
// @Accept json
// @Produce json
// @Param request body request.StartStakeRequest true "Stake Request"
// @Success 200 {object} response.Response
// @Router /api/v1/stake [post]
func (h *StakeHandler) Start(c *gin.Context) {
	// 1. 绑定参数
	var req request.StartStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	// 2. 调用协调器
	intent, err := h.svc.Start(c.Request.Context(), req.UserID, req.PackageID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, intent)
}

// Confirm 确认在途质押
// @Summary 确认在途质押
// @Description 将已上链的转账提交后端落账；失败保留意向可重试
// @Tags Staking
// @Accept json
// @Produce json
// @Param request body request.ConfirmStakeRequest true "Confirm Request"
// @Success 200 {object} response.Response
// @Router /api/v1/stake/confirm [post]
func (h *StakeHandler) Confirm(c *gin.Context) {
	var req request.ConfirmStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	if err := h.svc.Confirm(c.Request.Context(), req.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Cancel 丢弃在途质押
// @Summary 丢弃在途质押
// @Description 仅删除本地记录，链上转账不可撤回
// @Tags Staking
// @Accept json
// @Produce json
// @Param request body request.CancelStakeRequest true "Cancel Request"
// @Success 200 {object} response.Response
// @Router /api/v1/stake/cancel [post]
func (h *StakeHandler) Cancel(c *gin.Context) {
	var req request.CancelStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), req.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Pending 查询在途质押
// @Summary 查询在途质押
// @Description 页面刷新后恢复 "待确认" 状态用；过期意向返回预警码
// @Tags Staking
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/stake/pending [get]
func (h *StakeHandler) Pending(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	intent, err := h.svc.Pending(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if intent == nil {
		response.Error(c, errno.ErrNoPendingStake)
		return
	}

	response.Success(c, intent)
}

// Packages 质押套餐目录
// @Summary 质押套餐目录
// @Tags Staking
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/packages [get]
func (h *StakeHandler) Packages(c *gin.Context) {
	packages, err := h.svc.Packages(c.Request.Context())
	if err != nil {
		response.Error(c, errno.ErrDatabase)
		return
	}
	response.Success(c, packages)
}

// Stakings 用户已确认质押列表
// @Summary 已确认质押列表
// @Tags Staking
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/stakings [get]
func (h *StakeHandler) Stakings(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	stakings, err := h.svc.Stakings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, errno.ErrDatabase)
		return
	}
	response.Success(c, stakings)
}
