package biz

import "fieldcatalog/cmd/catalog-service/internal/domain"

// CatalogBroadcaster 名录变更的实时广播端口
// 由 websocket Hub 实现；广播是尽力而为的通知，
// 失败或未初始化都不得影响已完成的主操作
type CatalogBroadcaster interface {
	// EntriesUpdated 条目关联变化后广播重新计算的完整条目列表
	EntriesUpdated(catalogID string, entries []*domain.CatalogEntryDetail, triggeredBy string)

	// MetadataUpdated 名称/描述变化后广播名录元数据
	MetadataUpdated(catalog *domain.Catalog, triggeredBy string)

	// CatalogDeleted 名录删除后广播，接收方应丢弃本地状态
	CatalogDeleted(catalogID string, triggeredBy string)
}
