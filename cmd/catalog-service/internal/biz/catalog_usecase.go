package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// CatalogSummary 名录列表投影，附带条目数量与调用者的有效角色
type CatalogSummary struct {
	*domain.Catalog
	EntryCount int64              `json:"entry_count"`
	Role       domain.AccessLevel `json:"role"`
}

// CatalogUsecase 名录用例
type CatalogUsecase struct {
	catalogRepo domain.CatalogRepository
	linkRepo    domain.EntryLinkRepository
	shareRepo   domain.ShareRepository
	resolver    *PermissionResolver
	broadcaster CatalogBroadcaster
	logger      *log.Helper
}

// NewCatalogUsecase 创建名录用例
func NewCatalogUsecase(
	catalogRepo domain.CatalogRepository,
	linkRepo domain.EntryLinkRepository,
	shareRepo domain.ShareRepository,
	resolver *PermissionResolver,
	broadcaster CatalogBroadcaster,
	logger log.Logger,
) *CatalogUsecase {
	return &CatalogUsecase{
		catalogRepo: catalogRepo,
		linkRepo:    linkRepo,
		shareRepo:   shareRepo,
		resolver:    resolver,
		broadcaster: broadcaster,
		logger:      log.NewHelper(log.With(logger, "module", "catalog-usecase")),
	}
}

// CreateCatalog 创建名录
func (uc *CatalogUsecase) CreateCatalog(ctx context.Context, ownerID, name, description string) (*domain.Catalog, error) {
	catalog, err := domain.NewCatalog(ownerID, name, description)
	if err != nil {
		return nil, err
	}

	if err := uc.catalogRepo.CreateCatalog(ctx, catalog); err != nil {
		return nil, err
	}

	uc.logger.Infof("catalog created: id=%s owner=%s name=%q", catalog.ID, ownerID, catalog.Name)
	return catalog, nil
}

// GetCatalog 获取名录
// 无读取权限的名录对调用者视为不存在
func (uc *CatalogUsecase) GetCatalog(ctx context.Context, id, userID string) (*domain.Catalog, domain.AccessLevel, error) {
	catalog, level, err := uc.resolver.ResolveByID(ctx, id, userID)
	if err != nil {
		return nil, domain.AccessNone, err
	}
	if !level.CanRead() {
		return nil, domain.AccessNone, domain.ErrCatalogNotFound
	}
	return catalog, level, nil
}

// ListCatalogs 列出所有者的名录，附带条目数量
func (uc *CatalogUsecase) ListCatalogs(ctx context.Context, ownerID string) ([]*CatalogSummary, error) {
	catalogs, err := uc.catalogRepo.ListCatalogsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return uc.toSummaries(ctx, catalogs, domain.AccessOwner)
}

// ListSharedWithMe 列出用户已接受共享的名录
func (uc *CatalogUsecase) ListSharedWithMe(ctx context.Context, userID string) ([]*CatalogSummary, error) {
	shares, err := uc.shareRepo.ListAcceptedForInvitee(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*CatalogSummary, 0, len(shares))
	for _, share := range shares {
		catalog, err := uc.catalogRepo.GetCatalog(ctx, share.CatalogID)
		if err != nil {
			// 名录已被删除但共享记录尚未级联清理时跳过
			uc.logger.Warnf("shared catalog missing: catalog=%s share=%s", share.CatalogID, share.ID)
			continue
		}

		count, err := uc.linkRepo.CountByCatalog(ctx, catalog.ID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, &CatalogSummary{
			Catalog:    catalog,
			EntryCount: count,
			Role:       domain.AccessFromShare(share),
		})
	}

	return summaries, nil
}

// UpdateCatalog 更新名录元数据（仅所有者）
func (uc *CatalogUsecase) UpdateCatalog(ctx context.Context, id, ownerID string, update *domain.CatalogUpdate) (*domain.Catalog, error) {
	if update == nil || update.IsEmpty() {
		return nil, domain.ErrValidation
	}

	// 入库前规范化并校验字段
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" || len(name) > domain.MaxCatalogNameLength {
			return nil, domain.ErrInvalidCatalogName
		}
		update.Name = &name
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if len(description) > domain.MaxCatalogDescriptionLength {
			return nil, domain.ErrInvalidDescription
		}
		update.Description = &description
	}

	catalog, err := uc.catalogRepo.UpdateCatalog(ctx, id, ownerID, update)
	if err != nil {
		return nil, err
	}

	uc.broadcastMetadataUpdated(catalog, ownerID)
	return catalog, nil
}

// DeleteCatalog 删除名录（仅所有者），级联清理关联与共享记录
// 级联是逻辑级联：主删除成功后依次清理，清理失败只记录日志
func (uc *CatalogUsecase) DeleteCatalog(ctx context.Context, id, ownerID string) (bool, error) {
	deleted, err := uc.catalogRepo.DeleteCatalog(ctx, id, ownerID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	if err := uc.linkRepo.RemoveAllForCatalog(ctx, id); err != nil {
		uc.logger.Errorf("failed to cascade entry links: catalog=%s err=%v", id, err)
	}
	if err := uc.shareRepo.RemoveAllForCatalog(ctx, id); err != nil {
		uc.logger.Errorf("failed to cascade shares: catalog=%s err=%v", id, err)
	}

	uc.logger.Infof("catalog deleted: id=%s owner=%s", id, ownerID)
	uc.broadcastDeleted(id, ownerID)
	return true, nil
}

// toSummaries 组装名录列表投影
func (uc *CatalogUsecase) toSummaries(ctx context.Context, catalogs []*domain.Catalog, role domain.AccessLevel) ([]*CatalogSummary, error) {
	summaries := make([]*CatalogSummary, 0, len(catalogs))
	for _, catalog := range catalogs {
		count, err := uc.linkRepo.CountByCatalog(ctx, catalog.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count entries: %w", err)
		}
		summaries = append(summaries, &CatalogSummary{
			Catalog:    catalog,
			EntryCount: count,
			Role:       role,
		})
	}
	return summaries, nil
}

// broadcastMetadataUpdated 广播元数据变更，Hub 未初始化时为空操作
func (uc *CatalogUsecase) broadcastMetadataUpdated(catalog *domain.Catalog, triggeredBy string) {
	if uc.broadcaster == nil {
		uc.logger.Warn("broadcast skipped: hub not initialized")
		return
	}
	uc.broadcaster.MetadataUpdated(catalog, triggeredBy)
}

// broadcastDeleted 广播名录删除，Hub 未初始化时为空操作
func (uc *CatalogUsecase) broadcastDeleted(catalogID, triggeredBy string) {
	if uc.broadcaster == nil {
		uc.logger.Warn("broadcast skipped: hub not initialized")
		return
	}
	uc.broadcaster.CatalogDeleted(catalogID, triggeredBy)
}
