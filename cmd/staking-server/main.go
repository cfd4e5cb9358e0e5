package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staking-core/internal/backend"
	"staking-core/internal/event"
	"staking-core/internal/handler"
	"staking-core/internal/model"
	"staking-core/internal/server"
	"staking-core/internal/service"
	"staking-core/internal/service/mq"
	"staking-core/internal/store"
	"staking-core/internal/wallet"
	"staking-core/pkg/cache"
	"staking-core/pkg/config"
	"staking-core/pkg/database"
	"staking-core/pkg/logger"

	"go.uber.org/zap"
)

// @title Staking Core API
// @version 1.0
// @description Staking lifecycle and referral network API

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 构造 DSN
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)

	// 3. 连接数据库
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 4. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 数据库迁移 (仅开发环境)
	if config.Global.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
		logger.Info("数据库自动迁移完成 (Dev Mode)")
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}

	// 6. 初始化钱包网关
	gateway, err := wallet.NewEthGateway(
		config.Global.Chain.RpcUrl,
		config.Global.Chain.HotKey,
		config.Global.Chain.ChainID,
	)
	if err != nil {
		logger.Fatal("钱包网关初始化失败", zap.Error(err))
	}

	// 7. 初始化 MQ Producer / Consumer
	consumerName, _ := os.Hostname()
	if consumerName == "" {
		consumerName = "staking-server"
	}
	var producer mq.Producer
	var consumer mq.Consumer
	if config.Global.Redis.MQType == "kafka" {
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers, event.TopicStake)
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "staking-core-audit", event.TopicStake)
		logger.Info("MQ: 使用 Kafka")
	} else {
		producer = mq.NewRedisProducer(rdb)
		consumer = mq.NewRedisConsumer(rdb, "staking-core-audit", consumerName)
		logger.Info("MQ: 使用 Redis Stream")
	}

	// 8. 组装服务
	redisCache := cache.NewRedisCache(rdb)
	pendingStore := store.NewPendingStakeStore(redisCache)
	settingsCache := cache.NewMemoryCache(time.Minute, 5*time.Minute)
	settings := service.NewSettingsService(db, settingsCache)
	backendClient := backend.NewRestClient(
		config.Global.Backend.BaseUrl,
		time.Duration(config.Global.Backend.TimeoutSeconds)*time.Second,
	)

	stakeSvc := service.NewStakeService(db, gateway, pendingStore, backendClient, settings, producer, service.StakeConfig{
		ChainID:      config.Global.Chain.ChainID,
		UsdtAddress:  config.Global.Chain.UsdtAddress,
		UsdtDecimals: config.Global.Chain.UsdtDecimals,
	})
	referralSvc := service.NewReferralService(db, backendClient)
	withdrawalSvc := service.NewWithdrawalService(db, settings)

	// 9. 启动定时任务 (过期意向清理)
	cronSvc := service.NewCronService(rdb, pendingStore, producer)
	cronSvc.Start()
	defer cronSvc.Stop()

	// 9.5 启动事件审计 worker (消费质押事件流，过期预警落审计日志)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	auditWorker := service.NewEventWorker(consumer)
	go func() {
		if err := auditWorker.Run(workerCtx); err != nil {
			logger.Error("审计 worker 退出", zap.Error(err))
		}
	}()

	// 10. 启动 HTTP Server
	router := server.NewHTTPRouter(server.Handlers{
		Stake:      handler.NewStakeHandler(stakeSvc),
		Referral:   handler.NewReferralHandler(referralSvc, service.DefaultCommissionSchedule()),
		Withdrawal: handler.NewWithdrawalHandler(withdrawalSvc),
	})

	srv := &http.Server{
		Addr:    ":" + config.Global.App.HttpPort,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP Server 启动", zap.String("port", config.Global.App.HttpPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP Server 启动失败", zap.Error(err))
		}
	}()

	// 11. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("收到退出信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP Server 关闭失败", zap.Error(err))
	}
	logger.Info("服务已退出")
}
