package server

import (
	"staking-core/internal/handler"
	"staking-core/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由需要的全部 handler
type Handlers struct {
	Stake      *handler.StakeHandler
	Referral   *handler.ReferralHandler
	Withdrawal *handler.WithdrawalHandler
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(h Handlers) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.POST("/stake", h.Stake.Start)
		api.POST("/stake/confirm", h.Stake.Confirm)
		api.POST("/stake/cancel", h.Stake.Cancel)
		api.GET("/stake/pending", h.Stake.Pending)
		api.GET("/packages", h.Stake.Packages)
		api.GET("/stakings", h.Stake.Stakings)

		api.GET("/referrals/tree", h.Referral.Tree)
		api.GET("/referrals/stats", h.Referral.Stats)
		api.GET("/referrals/breakdown", h.Referral.Breakdown)
		api.GET("/referrals/verify", h.Referral.Verify)
		api.GET("/admin/referrals/forest", h.Referral.Forest)
		api.GET("/admin/referrals/health", h.Referral.Health)

		api.GET("/withdrawals", h.Withdrawal.List)
		api.GET("/withdrawals/quote", h.Withdrawal.Quote)
	}

	return r
}
