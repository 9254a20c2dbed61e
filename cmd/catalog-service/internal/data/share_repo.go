package data

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// ShareRepository 名录共享仓储实现
type ShareRepository struct {
	db *gorm.DB
}

// NewShareRepository 创建共享仓储
func NewShareRepository(db *gorm.DB) domain.ShareRepository {
	return &ShareRepository{
		db: db,
	}
}

// CreateShare 创建共享记录
// (catalog, invitee) 唯一索引保证每对至多一条记录
func (r *ShareRepository) CreateShare(ctx context.Context, share *domain.CatalogShare) error {
	if err := r.db.WithContext(ctx).Create(share).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateInvitation
		}
		return err
	}
	return nil
}

// GetShare 按 ID 获取共享记录
func (r *ShareRepository) GetShare(ctx context.Context, id string) (*domain.CatalogShare, error) {
	var share domain.CatalogShare
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&share).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShareNotFound
		}
		return nil, err
	}
	return &share, nil
}

// FindByCatalogAndInvitee 查找 (catalog, invitee) 的唯一记录
// 不存在时返回 (nil, nil)，调用方据此区分"无记录"与存储错误
func (r *ShareRepository) FindByCatalogAndInvitee(ctx context.Context, catalogID, inviteeID string) (*domain.CatalogShare, error) {
	var share domain.CatalogShare
	err := r.db.WithContext(ctx).
		Where("catalog_id = ? AND invitee_id = ?", catalogID, inviteeID).
		First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

// UpdateShare 保存共享记录变更
func (r *ShareRepository) UpdateShare(ctx context.Context, share *domain.CatalogShare) error {
	return r.db.WithContext(ctx).Save(share).Error
}

// ListCollaborators 列出名录的协作者记录（不含 revoked）
func (r *ShareRepository) ListCollaborators(ctx context.Context, catalogID string) ([]*domain.CatalogShare, error) {
	var shares []*domain.CatalogShare
	err := r.db.WithContext(ctx).
		Where("catalog_id = ? AND status != ?", catalogID, domain.ShareRevoked).
		Order("created_at ASC").
		Find(&shares).Error
	return shares, err
}

// ListPendingForInvitee 列出用户待处理的邀请
func (r *ShareRepository) ListPendingForInvitee(ctx context.Context, inviteeID string) ([]*domain.CatalogShare, error) {
	var shares []*domain.CatalogShare
	err := r.db.WithContext(ctx).
		Where("invitee_id = ? AND status = ?", inviteeID, domain.SharePending).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}

// ListAcceptedForInvitee 列出用户已接受的共享
func (r *ShareRepository) ListAcceptedForInvitee(ctx context.Context, inviteeID string) ([]*domain.CatalogShare, error) {
	var shares []*domain.CatalogShare
	err := r.db.WithContext(ctx).
		Where("invitee_id = ? AND status = ?", inviteeID, domain.ShareAccepted).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}

// RemoveAllForCatalog 移除名录的全部共享记录
func (r *ShareRepository) RemoveAllForCatalog(ctx context.Context, catalogID string) error {
	return r.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Delete(&domain.CatalogShare{}).Error
}
