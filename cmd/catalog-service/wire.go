//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"fieldcatalog/cmd/catalog-service/internal/biz"
	"fieldcatalog/cmd/catalog-service/internal/data"
	"fieldcatalog/cmd/catalog-service/internal/server"
	"fieldcatalog/cmd/catalog-service/internal/service"
	"fieldcatalog/cmd/catalog-service/internal/websocket"
)

// initApp 初始化应用
func initApp(dbConfig *data.DBConfig, cfg *AppConfig) (*AppComponents, error) {
	panic(wire.Build(
		// 基础设施
		provideLogger,
		provideJWTManager,
		provideRedisClient,
		provideRateLimiter,
		provideKafkaProducer,
		provideNotifier,
		provideEntryStore,
		provideUserDirectory,
		provideMediaResolver,
		provideHealthChecker,

		// Data 层
		data.ProviderSet,

		// Biz 层
		biz.NewPermissionResolver,
		biz.NewCatalogUsecase,
		biz.NewEntryLinkUsecase,
		biz.NewShareUsecase,

		// WebSocket 层
		provideAccessChecker,
		websocket.NewHub,
		provideBroadcaster,

		// Service 层
		service.NewCatalogService,

		// Server 层
		server.NewHTTPServer,

		// 组装 AppComponents
		wire.Struct(new(AppComponents), "*"),
	))
}
