package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fieldcatalog/cmd/catalog-service/internal/data"
	"fieldcatalog/pkg/config"
)

func main() {
	// 获取配置模式（支持 local 或 nacos）
	configMode := config.GetEnvOrDefault("CONFIG_MODE", "local")
	log.Printf("Starting Catalog Service in %s mode", configMode)

	var cfgManager *config.Manager
	var dbConfig *data.DBConfig

	// 根据配置模式初始化
	if configMode == "nacos" {
		// Nacos 模式：从配置中心加载配置
		configPath := config.GetEnvOrDefault("CONFIG_PATH", "./configs/catalog-service.yaml")
		serviceName := "catalog-service"

		cfgManager = config.NewManager()
		if err := cfgManager.LoadConfig(configPath, serviceName); err != nil {
			log.Fatalf("Failed to load config from Nacos: %v", err)
		}
		defer cfgManager.Close()

		// 解析数据库配置
		var dbConfigStruct struct {
			Data struct {
				Database struct {
					Host string `mapstructure:"host"`
					Port int    `mapstructure:"port"`
					User string `mapstructure:"user"`
					Pass string `mapstructure:"password"`
					Name string `mapstructure:"database"`
				} `mapstructure:"database"`
			} `mapstructure:"data"`
		}

		if err := cfgManager.Unmarshal(&dbConfigStruct); err != nil {
			log.Printf("Failed to unmarshal database config from Nacos, using environment variables: %v", err)
		}

		// 构建 DBConfig（环境变量优先级最高）
		dbConfig = &data.DBConfig{
			Host:     config.GetEnvOrDefault("DB_HOST", getOrDefault(dbConfigStruct.Data.Database.Host, "localhost")),
			Port:     config.GetEnvAsIntOrDefault("DB_PORT", getIntOrDefault(dbConfigStruct.Data.Database.Port, 5432)),
			User:     config.GetEnvOrDefault("DB_USER", getOrDefault(dbConfigStruct.Data.Database.User, "postgres")),
			Password: config.GetEnvOrDefault("DB_PASSWORD", getOrDefault(dbConfigStruct.Data.Database.Pass, "postgres")),
			Database: config.GetEnvOrDefault("DB_NAME", getOrDefault(dbConfigStruct.Data.Database.Name, "fieldcatalog")),
		}
	} else {
		// Local 模式：纯环境变量配置
		dbConfig = &data.DBConfig{
			Host:     config.GetEnvOrDefault("DB_HOST", "localhost"),
			Port:     config.GetEnvAsIntOrDefault("DB_PORT", 5432),
			User:     config.GetEnvOrDefault("DB_USER", "postgres"),
			Password: config.GetEnvOrDefault("DB_PASSWORD", "postgres"),
			Database: config.GetEnvOrDefault("DB_NAME", "fieldcatalog"),
		}
	}

	appConfig := &AppConfig{
		JWTSecret:          config.GetEnvOrDefault("JWT_SECRET", "dev-secret-change-me"),
		RedisAddr:          config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      config.GetEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:            config.GetEnvAsIntOrDefault("REDIS_DB", 0),
		KafkaBrokers:       splitNonEmpty(config.GetEnvOrDefault("KAFKA_BROKERS", "")),
		EntryServiceURL:    config.GetEnvOrDefault("ENTRY_SERVICE_URL", "http://localhost:8081"),
		IdentityServiceURL: config.GetEnvOrDefault("IDENTITY_SERVICE_URL", "http://localhost:8082"),
		MediaBaseURL:       config.GetEnvOrDefault("MEDIA_BASE_URL", "http://localhost:8083/media"),
		RateLimitRPM:       config.GetEnvAsIntOrDefault("RATE_LIMIT_RPM", 200),
	}

	// 初始化应用（使用 Wire 生成的代码）
	appComponents, err := initApp(dbConfig, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	// 启动 Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	go appComponents.Hub.Run(hubCtx)

	// 启动服务器
	addr := fmt.Sprintf(":%s", config.GetEnvOrDefault("PORT", "8080"))
	log.Printf("Starting Catalog Service on %s", addr)
	log.Printf("DB: %s@%s:%d/%s", dbConfig.User, dbConfig.Host, dbConfig.Port, dbConfig.Database)

	go func() {
		if err := appComponents.Server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中断信号以优雅关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownTimeout := config.GetEnvAsDurationOrDefault("SHUTDOWN_TIMEOUT", 30*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := appComponents.Server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// 停止 Hub
	stopHub()

	// 清理资源
	if appComponents.Producer != nil {
		_ = appComponents.Producer.Close()
	}
	if appComponents.Redis != nil {
		_ = appComponents.Redis.Close()
	}
	if appComponents.DB != nil {
		sqlDB, err := appComponents.DB.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	log.Println("Server exited")
}

// getOrDefault 获取字符串值或默认值
func getOrDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

// getIntOrDefault 获取整数值或默认值
func getIntOrDefault(value, defaultValue int) int {
	if value != 0 {
		return value
	}
	return defaultValue
}

// splitNonEmpty 分割逗号分隔的列表，空串返回 nil
func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
