package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fieldcatalog/cmd/catalog-service/internal/biz"
	"fieldcatalog/cmd/catalog-service/internal/domain"
	"fieldcatalog/cmd/catalog-service/internal/infra"
	"fieldcatalog/cmd/catalog-service/internal/infra/kafka"
	"fieldcatalog/cmd/catalog-service/internal/middleware"
	"fieldcatalog/cmd/catalog-service/internal/server"
	"fieldcatalog/cmd/catalog-service/internal/websocket"
	"fieldcatalog/pkg/auth"
	"fieldcatalog/pkg/health"
)

// AppConfig 应用配置
type AppConfig struct {
	JWTSecret          string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	KafkaBrokers       []string
	EntryServiceURL    string
	IdentityServiceURL string
	MediaBaseURL       string
	RateLimitRPM       int
}

// AppComponents 包含应用组件和资源
type AppComponents struct {
	Server   *server.HTTPServer
	Hub      *websocket.Hub
	DB       *gorm.DB
	Producer *kafka.EventProducer
	Redis    *redis.Client
}

// provideLogger 创建结构化日志器
func provideLogger() log.Logger {
	return log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"service", "catalog-service",
	)
}

// provideJWTManager 创建 JWT 管理器
func provideJWTManager(cfg *AppConfig) *auth.JWTManager {
	return auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour, 7*24*time.Hour)
}

// provideRedisClient 创建 Redis 客户端
func provideRedisClient(cfg *AppConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// provideRateLimiter 创建限流器
func provideRateLimiter(client *redis.Client, cfg *AppConfig, logger log.Logger) *middleware.RateLimiter {
	return middleware.NewRateLimiter(client, &middleware.RateLimiterConfig{
		Enabled:    true,
		DefaultRPM: cfg.RateLimitRPM,
	}, logger)
}

// provideKafkaProducer 创建 Kafka 生产者
// 未配置 broker 时返回 nil，通知降级为空操作
func provideKafkaProducer(cfg *AppConfig) (*kafka.EventProducer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, nil
	}
	return kafka.NewEventProducer(&kafka.ProducerConfig{
		Brokers:     cfg.KafkaBrokers,
		Compression: "snappy",
		MaxRetries:  3,
		Timeout:     10 * time.Second,
	})
}

// provideNotifier 创建通知分发器
func provideNotifier(producer *kafka.EventProducer, logger log.Logger) domain.Notifier {
	if producer == nil {
		return nil
	}
	return infra.NewKafkaNotifier(producer, logger)
}

// provideEntryStore 创建条目服务客户端
func provideEntryStore(cfg *AppConfig, logger log.Logger) domain.EntryStore {
	return infra.NewEntryClient(&infra.EntryClientConfig{BaseURL: cfg.EntryServiceURL}, logger)
}

// provideUserDirectory 创建身份服务客户端
func provideUserDirectory(cfg *AppConfig, logger log.Logger) domain.UserDirectory {
	return infra.NewUserClient(&infra.UserClientConfig{BaseURL: cfg.IdentityServiceURL}, logger)
}

// provideMediaResolver 创建媒体 URL 解析器
func provideMediaResolver(cfg *AppConfig) domain.MediaURLResolver {
	return infra.NewMediaResolver(cfg.MediaBaseURL)
}

// provideHealthChecker 注册数据库、Redis 与条目服务健康检查
// 就绪性只依赖 postgres，条目服务不可达时降级而不摘除实例
func provideHealthChecker(db *gorm.DB, redisClient *redis.Client, cfg *AppConfig) *health.ReadinessChecker {
	checker := health.NewHealthChecker()

	checker.Register(health.NewPingChecker("postgres", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}))
	checker.Register(health.NewPingChecker("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}))

	entryHealthURL := cfg.EntryServiceURL + "/health"
	httpClient := &http.Client{Timeout: 3 * time.Second}
	checker.Register(health.NewServiceChecker("entry-service", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, entryHealthURL, nil)
		if err != nil {
			return err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("entry service returned %d", resp.StatusCode)
		}
		return nil
	}, time.Second))

	return health.NewReadinessChecker(checker, []string{"postgres"})
}

// provideAccessChecker 将权限解析器暴露给 WebSocket 层
func provideAccessChecker(resolver *biz.PermissionResolver) websocket.AccessChecker {
	return resolver
}

// provideBroadcaster 将 Hub 暴露给业务层
func provideBroadcaster(hub *websocket.Hub) biz.CatalogBroadcaster {
	return hub
}
