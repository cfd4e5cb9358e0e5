package handler

import (
	"errors"
	"strconv"

	"staking-core/internal/handler/response"
	"staking-core/internal/service"
	"staking-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	svc      *service.ReferralService
	schedule *service.CommissionSchedule
}

func NewReferralHandler(svc *service.ReferralService, schedule *service.CommissionSchedule) *ReferralHandler {
	return &ReferralHandler{svc: svc, schedule: schedule}
}

// Tree 推荐树
// @Summary 推荐树
// @Description 以用户为根的推荐树，直推 level 1
// @Tags Referral
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/referrals/tree [get]
func (h *ReferralHandler) Tree(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	tree, err := h.svc.Tree(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tree)
}

// Stats 按层聚合统计
// @Summary 推荐网络按层统计
// @Tags Referral
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/referrals/stats [get]
func (h *ReferralHandler) Stats(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Breakdown 佣金明细
// @Summary 按佣金表展开的每层明细
// @Tags Referral
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/referrals/breakdown [get]
func (h *ReferralHandler) Breakdown(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	breakdown, err := h.svc.CommissionBreakdown(c.Request.Context(), userID, h.schedule)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, breakdown)
}

// Verify 与后端口径比对
// @Summary 本地重算统计并与后端比对
// @Tags Referral
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/referrals/verify [get]
func (h *ReferralHandler) Verify(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	report, err := h.svc.VerifyAgainstBackend(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}

// graphHealth 关系图体检结果
type graphHealth struct {
	Healthy bool     `json:"healthy"`
	Issues  []string `json:"issues,omitempty"`
}

// Health 推荐关系图体检
// @Summary 管理端推荐关系图体检
// @Description 检查森林约定 (单推荐人、无环、深度受限)，返回问题清单
// @Tags Referral
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/referrals/health [get]
func (h *ReferralHandler) Health(c *gin.Context) {
	issues, err := h.svc.CheckGraph(c.Request.Context())
	if err != nil && !errors.Is(err, errno.ErrMalformedReferralGraph) {
		response.Error(c, err)
		return
	}
	// 脏数据不是请求失败: 正常返回体检结果，问题清单给运维处理
	response.Success(c, graphHealth{Healthy: err == nil, Issues: issues})
}

// Forest 管理端全量森林
// @Summary 管理端全量推荐森林
// @Tags Referral
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/referrals/forest [get]
func (h *ReferralHandler) Forest(c *gin.Context) {
	forest, err := h.svc.Forest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, forest)
}
