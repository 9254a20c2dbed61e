package data

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// EntryLinkRepository 名录条目关联仓储实现
type EntryLinkRepository struct {
	db *gorm.DB
}

// NewEntryLinkRepository 创建条目关联仓储
func NewEntryLinkRepository(db *gorm.DB) domain.EntryLinkRepository {
	return &EntryLinkRepository{
		db: db,
	}
}

// CreateLink 关联条目
func (r *EntryLinkRepository) CreateLink(ctx context.Context, link *domain.CatalogEntryLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEntryAlreadyLinked
		}
		return err
	}
	return nil
}

// DeleteLink 解除关联，不存在时为幂等空操作
func (r *EntryLinkRepository) DeleteLink(ctx context.Context, catalogID, entryID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("catalog_id = ? AND entry_id = ?", catalogID, entryID).
		Delete(&domain.CatalogEntryLink{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsLinked 是否已关联
func (r *EntryLinkRepository) IsLinked(ctx context.Context, catalogID, entryID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.CatalogEntryLink{}).
		Where("catalog_id = ? AND entry_id = ?", catalogID, entryID).
		Count(&count).Error
	return count > 0, err
}

// ListLinks 列出名录的关联记录
func (r *EntryLinkRepository) ListLinks(ctx context.Context, catalogID string) ([]*domain.CatalogEntryLink, error) {
	var links []*domain.CatalogEntryLink
	err := r.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Order("added_at DESC").
		Find(&links).Error
	return links, err
}

// ListCatalogIDsForEntry 列出引用该条目的名录
func (r *EntryLinkRepository) ListCatalogIDsForEntry(ctx context.Context, entryID string) ([]string, error) {
	var catalogIDs []string
	err := r.db.WithContext(ctx).
		Model(&domain.CatalogEntryLink{}).
		Where("entry_id = ?", entryID).
		Pluck("catalog_id", &catalogIDs).Error
	return catalogIDs, err
}

// RemoveAllForEntry 移除该条目的全部关联
func (r *EntryLinkRepository) RemoveAllForEntry(ctx context.Context, entryID string) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Delete(&domain.CatalogEntryLink{}).Error
}

// RemoveAllForCatalog 移除名录的全部关联
func (r *EntryLinkRepository) RemoveAllForCatalog(ctx context.Context, catalogID string) error {
	return r.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Delete(&domain.CatalogEntryLink{}).Error
}

// CountByCatalog 统计名录的条目数量
func (r *EntryLinkRepository) CountByCatalog(ctx context.Context, catalogID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.CatalogEntryLink{}).
		Where("catalog_id = ?", catalogID).
		Count(&count).Error
	return count, err
}
