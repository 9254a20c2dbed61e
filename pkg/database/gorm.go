package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Config Postgres 连接配置
type Config struct {
	Source   string // 完整 DSN，优先于以下字段
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// 连接池配置，零值回退到默认
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// 启动连通性校验超时，默认5秒
	PingTimeout time.Duration
}

func (c *Config) dsn() string {
	if c.Source != "" {
		return c.Source
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// gormConfig 统一的 gorm 配置
// TranslateError 把驱动的唯一约束冲突翻译成 gorm.ErrDuplicatedKey，
// 仓储层依赖它映射领域冲突错误
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewDB 建立 Postgres 连接并配置连接池
func NewDB(c *Config, logger log.Logger) (*gorm.DB, error) {
	logHelper := log.NewHelper(logger)

	// 日志不输出密码
	logHelper.Infof("connecting to postgres: host=%s:%d database=%s user=%s",
		c.Host, c.Port, c.Database, c.User)

	db, err := gorm.Open(postgres.Open(c.dsn()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	maxIdle, maxOpen := c.MaxIdleConns, c.MaxOpenConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	if maxOpen == 0 {
		maxOpen = 100
	}
	maxLifetime, maxIdleTime := c.ConnMaxLifetime, c.ConnMaxIdleTime
	if maxLifetime == 0 {
		maxLifetime = time.Hour
	}
	if maxIdleTime == 0 {
		maxIdleTime = 15 * time.Minute
	}

	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(maxLifetime)
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	pingTimeout := c.PingTimeout
	if pingTimeout == 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logHelper.Infof("postgres connected: maxIdle=%d maxOpen=%d maxLifetime=%v", maxIdle, maxOpen, maxLifetime)
	return db, nil
}
