package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	auditapp "github.com/investghanahub/backend/internal/audit/application"
	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	auditmysql "github.com/investghanahub/backend/internal/audit/infrastructure/persistence/mysql"
	auditconsumer "github.com/investghanahub/backend/internal/audit/interfaces/consumer"
	audithttp "github.com/investghanahub/backend/internal/audit/interfaces/http"
	businessapp "github.com/investghanahub/backend/internal/business/application"
	businessdomain "github.com/investghanahub/backend/internal/business/domain"
	businessmysql "github.com/investghanahub/backend/internal/business/infrastructure/persistence/mysql"
	businesshttp "github.com/investghanahub/backend/internal/business/interfaces/http"
	identityapp "github.com/investghanahub/backend/internal/identity/application"
	identitydomain "github.com/investghanahub/backend/internal/identity/domain"
	identitymysql "github.com/investghanahub/backend/internal/identity/infrastructure/persistence/mysql"
	identityredis "github.com/investghanahub/backend/internal/identity/infrastructure/persistence/redis"
	identityhttp "github.com/investghanahub/backend/internal/identity/interfaces/http"
	investmentapp "github.com/investghanahub/backend/internal/investment/application"
	investmentdomain "github.com/investghanahub/backend/internal/investment/domain"
	investmentmysql "github.com/investghanahub/backend/internal/investment/infrastructure/persistence/mysql"
	investmenthttp "github.com/investghanahub/backend/internal/investment/interfaces/http"
	"github.com/investghanahub/backend/pkg/cache"
	"github.com/investghanahub/backend/pkg/config"
	"github.com/investghanahub/backend/pkg/db"
	"github.com/investghanahub/backend/pkg/logger"
	"github.com/investghanahub/backend/pkg/metrics"
	"github.com/investghanahub/backend/pkg/middleware"
	"github.com/investghanahub/backend/pkg/mq"
	"github.com/investghanahub/backend/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// 3. 初始化指标
	m := metrics.New(cfg.ServiceName)

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, m)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to database", "error", err)
	}
	defer database.Close()

	// 5. 自动迁移
	if cfg.Environment != "prod" {
		if err := database.AutoMigrate(
			&identitydomain.User{},
			&identitydomain.KYC{},
			&businessdomain.Business{},
			&investmentdomain.Opportunity{},
			&investmentdomain.Investment{},
			&investmentdomain.Transaction{},
			&auditdomain.AuditLog{},
			&auditdomain.FraudAlert{},
		); err != nil {
			logger.Fatal(ctx, "failed to migrate database", "error", err)
		}
	}

	// 6. 初始化 Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", "error", err)
	}
	defer redisCache.Close()

	// 7. 初始化 Kafka
	kafkaCfg := mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxRetries:     cfg.Kafka.MaxRetries,
		RetryBackoff:   cfg.Kafka.RetryBackoff,
	}
	producer, err := mq.NewProducer(kafkaCfg)
	if err != nil {
		logger.Fatal(ctx, "failed to create kafka producer", "error", err)
	}
	defer producer.Close()

	fraudConsumerReader, err := mq.NewConsumer(kafkaCfg, investmentdomain.InvestmentAcceptedEventType)
	if err != nil {
		logger.Fatal(ctx, "failed to create kafka consumer", "error", err)
	}
	defer fraudConsumerReader.Close()

	// 8. 依赖注入
	userRepo := identitymysql.NewUserRepository(database.DB)
	kycRepo := identitymysql.NewKYCRepository(database.DB)
	sessionRepo := identityredis.NewSessionRepository(redisCache.GetClient())
	businessRepo := businessmysql.NewBusinessRepository(database.DB)
	opportunityRepo := investmentmysql.NewOpportunityRepository(database.DB)
	investmentRepo := investmentmysql.NewInvestmentRepository(database.DB)
	transactionRepo := investmentmysql.NewTransactionRepository(database.DB)
	auditLogRepo := auditmysql.NewAuditLogRepository(database.DB)
	fraudAlertRepo := auditmysql.NewFraudAlertRepository(database.DB)

	recorder := auditapp.NewRecorderService(auditLogRepo)

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	authCmd := identityapp.NewAuthCommandService(userRepo, sessionRepo, producer, cfg.Auth.JWTSecret, tokenTTL)
	kycCmd := identityapp.NewKYCCommandService(kycRepo, userRepo, recorder, producer, m)
	identityQuery := identityapp.NewIdentityQueryService(userRepo, kycRepo)

	businessCmd := businessapp.NewBusinessCommandService(businessRepo, identityQuery, recorder, producer)
	businessQuery := businessapp.NewBusinessQueryService(businessRepo)
	businessGateway := businessapp.NewBusinessGateway(businessRepo)

	opportunityCmd := investmentapp.NewOpportunityCommandService(opportunityRepo, businessGateway, recorder, producer)
	investCmd := investmentapp.NewInvestCommandService(
		opportunityRepo, investmentRepo, transactionRepo,
		businessGateway, identityQuery, recorder, producer, m,
	)
	investmentQuery := investmentapp.NewInvestmentQueryService(opportunityRepo, investmentRepo, transactionRepo)

	fraudService := auditapp.NewFraudService(fraudAlertRepo, investmentQuery, recorder, m)
	auditQuery := auditapp.NewAuditQueryService(auditLogRepo, fraudAlertRepo)

	identityHandler := identityhttp.NewHandler(authCmd, kycCmd, identityQuery)
	businessHandler := businesshttp.NewHandler(businessCmd, businessQuery)
	investmentHandler := investmenthttp.NewHandler(opportunityCmd, investCmd, investmentQuery)
	auditHandler := audithttp.NewHandler(fraudService, auditQuery)

	dlq := mq.NewDeadLetterQueue(producer, investmentdomain.InvestmentAcceptedEventType+".dlq")
	fraudConsumer := auditconsumer.NewFraudConsumer(fraudConsumerReader, fraudService, dlq)

	sweepInterval := time.Duration(cfg.Jobs.MaturitySweepMinutes) * time.Minute
	maturityJob := investmentapp.NewMaturityJob(
		opportunityRepo, investmentRepo, transactionRepo,
		producer, logger.Get(), sweepInterval, m,
	)

	// 9. 路由
	limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
	sessions := identityhttp.NewSessionVerifier(sessionRepo)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.GinLogging(), middleware.GinRecovery(), middleware.GinCORS(), middleware.GinMetrics(m))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	api := engine.Group("/api/v1")

	public := api.Group("")
	public.Use(middleware.GinRateLimit(limiter, ratelimit.PerMinute(30), "auth"))
	identityHandler.RegisterPublicRoutes(public)

	authed := api.Group("")
	authed.Use(middleware.GinAuth(cfg.Auth.JWTSecret, sessions))
	identityHandler.RegisterRoutes(authed)
	businessHandler.RegisterRoutes(authed)
	investmentHandler.RegisterRoutes(authed)

	admin := api.Group("/admin")
	admin.Use(middleware.GinAuth(cfg.Auth.JWTSecret, sessions), middleware.RequireRole(string(identitydomain.RoleAdmin)))
	identityHandler.RegisterAdminRoutes(admin)
	businessHandler.RegisterAdminRoutes(admin)
	auditHandler.RegisterAdminRoutes(admin)

	// 10. 启动 HTTP 服务、后台任务与消费者
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		logger.Info(gCtx, "HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		maturityJob.Start(gCtx)
		return nil
	})
	g.Go(func() error {
		return fraudConsumer.Start(gCtx)
	})

	// 11. 优雅关停
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info(ctx, "shutdown signal received")
	case <-gCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown failed", "error", err)
	}
	cancel()

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
	}
	logger.Info(ctx, "server stopped")
}
