package domain

import (
	"time"

	"github.com/google/uuid"
)

// CatalogEntryLink 名录与观察条目的多对多关联
// (catalog, entry) 唯一，重复关联会被拒绝而不是静默成功
type CatalogEntryLink struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CatalogID string    `json:"catalog_id" gorm:"uniqueIndex:idx_catalog_entry;index"`
	EntryID   string    `json:"entry_id" gorm:"uniqueIndex:idx_catalog_entry;index"`
	AddedByID string    `json:"added_by_id"`
	AddedAt   time.Time `json:"added_at"`
}

// TableName specifies the table name
func (CatalogEntryLink) TableName() string {
	return "catalog_entry_links"
}

// NewCatalogEntryLink 创建关联记录
func NewCatalogEntryLink(catalogID, entryID, addedByID string) *CatalogEntryLink {
	return &CatalogEntryLink{
		ID:        uuid.New().String(),
		CatalogID: catalogID,
		EntryID:   entryID,
		AddedByID: addedByID,
		AddedAt:   time.Now(),
	}
}

// EntrySummary 外部条目服务返回的条目摘要
// 条目本身由外部服务拥有，这里只保留投影字段
type EntrySummary struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Species    string    `json:"species,omitempty"`
	ImagePath  string    `json:"image_path,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// CatalogEntryDetail 名录条目的响应投影
// 聚合关联记录与条目摘要，媒体路径已解析为可访问 URL
type CatalogEntryDetail struct {
	EntryID    string    `json:"entry_id"`
	Species    string    `json:"species,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	OwnerID    string    `json:"owner_id"`
	ObservedAt time.Time `json:"observed_at"`
	AddedByID  string    `json:"added_by_id"`
	AddedAt    time.Time `json:"added_at"`
}
