package service

import (
	"context"

	"fieldcatalog/cmd/catalog-service/internal/biz"
	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// CatalogService 名录服务实现
// 聚合名录、条目关联与共享用例，供传输层调用
type CatalogService struct {
	catalogUc *biz.CatalogUsecase
	linkUc    *biz.EntryLinkUsecase
	shareUc   *biz.ShareUsecase
}

// NewCatalogService 创建名录服务
func NewCatalogService(
	catalogUc *biz.CatalogUsecase,
	linkUc *biz.EntryLinkUsecase,
	shareUc *biz.ShareUsecase,
) *CatalogService {
	return &CatalogService{
		catalogUc: catalogUc,
		linkUc:    linkUc,
		shareUc:   shareUc,
	}
}

// CreateCatalog 创建名录
func (s *CatalogService) CreateCatalog(ctx context.Context, ownerID, name, description string) (*domain.Catalog, error) {
	return s.catalogUc.CreateCatalog(ctx, ownerID, name, description)
}

// GetCatalog 获取名录
func (s *CatalogService) GetCatalog(ctx context.Context, id, userID string) (*domain.Catalog, domain.AccessLevel, error) {
	return s.catalogUc.GetCatalog(ctx, id, userID)
}

// ListCatalogs 列出所有者的名录
func (s *CatalogService) ListCatalogs(ctx context.Context, ownerID string) ([]*biz.CatalogSummary, error) {
	return s.catalogUc.ListCatalogs(ctx, ownerID)
}

// ListSharedWithMe 列出共享给用户的名录
func (s *CatalogService) ListSharedWithMe(ctx context.Context, userID string) ([]*biz.CatalogSummary, error) {
	return s.catalogUc.ListSharedWithMe(ctx, userID)
}

// UpdateCatalog 更新名录元数据
func (s *CatalogService) UpdateCatalog(ctx context.Context, id, ownerID string, update *domain.CatalogUpdate) (*domain.Catalog, error) {
	return s.catalogUc.UpdateCatalog(ctx, id, ownerID, update)
}

// DeleteCatalog 删除名录
func (s *CatalogService) DeleteCatalog(ctx context.Context, id, ownerID string) (bool, error) {
	return s.catalogUc.DeleteCatalog(ctx, id, ownerID)
}

// LinkEntry 关联条目
func (s *CatalogService) LinkEntry(ctx context.Context, catalogID, entryID, userID string) (*domain.CatalogEntryLink, error) {
	return s.linkUc.LinkEntry(ctx, catalogID, entryID, userID)
}

// UnlinkEntry 解除条目关联
func (s *CatalogService) UnlinkEntry(ctx context.Context, catalogID, entryID, userID string) error {
	return s.linkUc.UnlinkEntry(ctx, catalogID, entryID, userID)
}

// ListEntries 列出名录条目
func (s *CatalogService) ListEntries(ctx context.Context, catalogID, userID string) ([]*domain.CatalogEntryDetail, error) {
	return s.linkUc.ListEntries(ctx, catalogID, userID)
}

// OnEntryDeleted 外部条目删除级联
func (s *CatalogService) OnEntryDeleted(ctx context.Context, entryID, deletedBy string) error {
	return s.linkUc.OnEntryDeleted(ctx, entryID, deletedBy)
}

// InviteCollaborator 邀请协作者
func (s *CatalogService) InviteCollaborator(ctx context.Context, catalogID, actorID, inviteeID string, role domain.ShareRole) (*domain.CatalogShare, error) {
	return s.shareUc.InviteCollaborator(ctx, catalogID, actorID, inviteeID, role)
}

// RespondToInvitation 响应邀请
func (s *CatalogService) RespondToInvitation(ctx context.Context, shareID, userID string, accept bool) (*domain.CatalogShare, error) {
	return s.shareUc.RespondToInvitation(ctx, shareID, userID, accept)
}

// UpdateCollaboratorRole 调整协作者角色
func (s *CatalogService) UpdateCollaboratorRole(ctx context.Context, catalogID, shareID, actorID string, role domain.ShareRole) (*domain.CatalogShare, error) {
	return s.shareUc.UpdateCollaboratorRole(ctx, catalogID, shareID, actorID, role)
}

// RevokeCollaborator 撤销共享
func (s *CatalogService) RevokeCollaborator(ctx context.Context, catalogID, shareID, actorID string) (*domain.CatalogShare, error) {
	return s.shareUc.RevokeCollaborator(ctx, catalogID, shareID, actorID)
}

// ListCollaborators 列出协作者
func (s *CatalogService) ListCollaborators(ctx context.Context, catalogID, userID string) ([]*domain.CatalogShare, error) {
	return s.shareUc.ListCollaborators(ctx, catalogID, userID)
}

// ListPendingInvitations 列出待处理邀请
func (s *CatalogService) ListPendingInvitations(ctx context.Context, userID string) ([]*biz.InvitationView, error) {
	return s.shareUc.ListPendingInvitations(ctx, userID)
}
