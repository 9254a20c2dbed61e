package data

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// CatalogRepository 名录仓储实现
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建名录仓储
func NewCatalogRepository(db *gorm.DB) domain.CatalogRepository {
	return &CatalogRepository{
		db: db,
	}
}

// CreateCatalog 创建名录
// (owner, name) 唯一索引由数据库保证，冲突翻译为领域错误
func (r *CatalogRepository) CreateCatalog(ctx context.Context, catalog *domain.Catalog) error {
	if err := r.db.WithContext(ctx).Create(catalog).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCatalogNameTaken
		}
		return err
	}
	return nil
}

// GetCatalog 获取名录
func (r *CatalogRepository) GetCatalog(ctx context.Context, id string) (*domain.Catalog, error) {
	var catalog domain.Catalog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&catalog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCatalogNotFound
		}
		return nil, err
	}
	return &catalog, nil
}

// ListCatalogsByOwner 列出所有者的名录
func (r *CatalogRepository) ListCatalogsByOwner(ctx context.Context, ownerID string) ([]*domain.Catalog, error) {
	var catalogs []*domain.Catalog
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Order("created_at DESC").
		Find(&catalogs).Error
	return catalogs, err
}

// UpdateCatalog 所有者范围内更新名录
// 所有者作为查询条件的一部分，避免先查后改引入的竞争窗口
func (r *CatalogRepository) UpdateCatalog(ctx context.Context, id, ownerID string, update *domain.CatalogUpdate) (*domain.Catalog, error) {
	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Catalog{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrCatalogNameTaken
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrCatalogNotFound
	}

	return r.GetCatalog(ctx, id)
}

// DeleteCatalog 所有者范围内删除名录
func (r *CatalogRepository) DeleteCatalog(ctx context.Context, id, ownerID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Catalog{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
