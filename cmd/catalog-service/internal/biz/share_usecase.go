package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"fieldcatalog/cmd/catalog-service/internal/domain"
	"fieldcatalog/cmd/catalog-service/internal/middleware"
)

// InvitationView 受邀者视角的邀请投影，附带名录元数据
type InvitationView struct {
	*domain.CatalogShare
	CatalogName string `json:"catalog_name"`
}

// ShareUsecase 名录共享用例
// 共享记录的状态机：pending → accepted/declined，任意状态 → revoked，
// revoked 可由新邀请复位为 pending
type ShareUsecase struct {
	catalogRepo domain.CatalogRepository
	shareRepo   domain.ShareRepository
	users       domain.UserDirectory
	resolver    *PermissionResolver
	notifier    domain.Notifier
	logger      *log.Helper
}

// NewShareUsecase 创建共享用例
func NewShareUsecase(
	catalogRepo domain.CatalogRepository,
	shareRepo domain.ShareRepository,
	users domain.UserDirectory,
	resolver *PermissionResolver,
	notifier domain.Notifier,
	logger log.Logger,
) *ShareUsecase {
	return &ShareUsecase{
		catalogRepo: catalogRepo,
		shareRepo:   shareRepo,
		users:       users,
		resolver:    resolver,
		notifier:    notifier,
		logger:      log.NewHelper(log.With(logger, "module", "share-usecase")),
	}
}

// InviteCollaborator 邀请协作者（仅所有者）
// 已存在 revoked 记录时原地复位为 pending 并采用新角色，不创建第二条记录；
// 其它状态的已有记录返回 ErrDuplicateInvitation，并携带现有记录供调用方决策
func (uc *ShareUsecase) InviteCollaborator(ctx context.Context, catalogID, actorID, inviteeID string, role domain.ShareRole) (*domain.CatalogShare, error) {
	// 1. 名录与角色校验
	catalog, err := uc.requireOwner(ctx, catalogID, actorID)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if inviteeID == catalog.OwnerID {
		return nil, domain.ErrCannotInviteOwner
	}

	// 2. 受邀者存在性校验（外部身份服务）
	exists, err := uc.users.UserExists(ctx, inviteeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrInviteeNotFound
	}

	// 3. 查找既有记录：revoked 复位，其余冲突
	existing, err := uc.shareRepo.FindByCatalogAndInvitee(ctx, catalogID, inviteeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status != domain.ShareRevoked {
			return existing, domain.ErrDuplicateInvitation
		}
		if err := existing.Restore(role, actorID); err != nil {
			return existing, err
		}
		if err := uc.shareRepo.UpdateShare(ctx, existing); err != nil {
			return nil, err
		}

		uc.logger.Infof("invitation restored: share=%s catalog=%s invitee=%s role=%s",
			existing.ID, catalogID, inviteeID, role)
		middleware.RecordShareOperation("invite", "restored")
		uc.notify(ctx, inviteeID, "catalog.invite", map[string]interface{}{
			"catalog_id":   catalogID,
			"catalog_name": catalog.Name,
			"role":         role,
			"invited_by":   actorID,
		})
		return existing, nil
	}

	// 4. 创建新的 pending 记录
	share, err := domain.NewCatalogShare(catalogID, catalog.OwnerID, inviteeID, actorID, role)
	if err != nil {
		return nil, err
	}
	if err := uc.shareRepo.CreateShare(ctx, share); err != nil {
		return nil, err
	}

	uc.logger.Infof("invitation created: share=%s catalog=%s invitee=%s role=%s",
		share.ID, catalogID, inviteeID, role)
	middleware.RecordShareOperation("invite", "created")
	uc.notify(ctx, inviteeID, "catalog.invite", map[string]interface{}{
		"catalog_id":   catalogID,
		"catalog_name": catalog.Name,
		"role":         role,
		"invited_by":   actorID,
	})
	return share, nil
}

// RespondToInvitation 受邀者响应邀请（accept/decline）
// 仅 pending 状态可响应，重复响应返回 ErrShareNotPending
func (uc *ShareUsecase) RespondToInvitation(ctx context.Context, shareID, userID string, accept bool) (*domain.CatalogShare, error) {
	share, err := uc.shareRepo.GetShare(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.InviteeID != userID {
		return nil, domain.ErrForbidden
	}

	if err := share.Respond(accept); err != nil {
		return nil, err
	}
	if err := uc.shareRepo.UpdateShare(ctx, share); err != nil {
		return nil, err
	}

	kind := "catalog.invite.declined"
	if accept {
		kind = "catalog.invite.accepted"
	}
	uc.logger.Infof("invitation responded: share=%s status=%s", share.ID, share.Status)
	middleware.RecordShareOperation("respond", string(share.Status))
	uc.notify(ctx, share.OwnerID, kind, map[string]interface{}{
		"catalog_id": share.CatalogID,
		"invitee":    userID,
	})
	return share, nil
}

// UpdateCollaboratorRole 调整协作者角色（仅所有者），不影响状态
func (uc *ShareUsecase) UpdateCollaboratorRole(ctx context.Context, catalogID, shareID, actorID string, role domain.ShareRole) (*domain.CatalogShare, error) {
	if _, err := uc.requireOwner(ctx, catalogID, actorID); err != nil {
		return nil, err
	}

	share, err := uc.shareRepo.GetShare(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.CatalogID != catalogID {
		return nil, domain.ErrShareNotFound
	}

	if err := share.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := uc.shareRepo.UpdateShare(ctx, share); err != nil {
		return nil, err
	}

	uc.logger.Infof("collaborator role updated: share=%s role=%s", share.ID, role)
	middleware.RecordShareOperation("role_change", "updated")
	return share, nil
}

// RevokeCollaborator 撤销共享（仅所有者），任意状态均可撤销
func (uc *ShareUsecase) RevokeCollaborator(ctx context.Context, catalogID, shareID, actorID string) (*domain.CatalogShare, error) {
	catalog, err := uc.requireOwner(ctx, catalogID, actorID)
	if err != nil {
		return nil, err
	}

	share, err := uc.shareRepo.GetShare(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.CatalogID != catalogID {
		return nil, domain.ErrShareNotFound
	}

	share.Revoke()
	if err := uc.shareRepo.UpdateShare(ctx, share); err != nil {
		return nil, err
	}

	uc.logger.Infof("collaborator revoked: share=%s catalog=%s invitee=%s", share.ID, catalogID, share.InviteeID)
	middleware.RecordShareOperation("revoke", "revoked")
	uc.notify(ctx, share.InviteeID, "catalog.invite.revoked", map[string]interface{}{
		"catalog_id":   catalogID,
		"catalog_name": catalog.Name,
	})
	return share, nil
}

// ListCollaborators 列出名录协作者（需读取权限，不含 revoked）
func (uc *ShareUsecase) ListCollaborators(ctx context.Context, catalogID, userID string) ([]*domain.CatalogShare, error) {
	_, level, err := uc.resolver.ResolveByID(ctx, catalogID, userID)
	if err != nil {
		return nil, err
	}
	if !level.CanRead() {
		return nil, domain.ErrCatalogNotFound
	}

	return uc.shareRepo.ListCollaborators(ctx, catalogID)
}

// ListPendingInvitations 列出用户待处理的邀请，附带名录名称
func (uc *ShareUsecase) ListPendingInvitations(ctx context.Context, userID string) ([]*InvitationView, error) {
	shares, err := uc.shareRepo.ListPendingForInvitee(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*InvitationView, 0, len(shares))
	for _, share := range shares {
		view := &InvitationView{CatalogShare: share}
		if catalog, err := uc.catalogRepo.GetCatalog(ctx, share.CatalogID); err == nil {
			view.CatalogName = catalog.Name
		}
		views = append(views, view)
	}
	return views, nil
}

// requireOwner 名录所有者校验
// 无读取权限的名录对调用者视为不存在，非所有者返回 ErrForbidden
func (uc *ShareUsecase) requireOwner(ctx context.Context, catalogID, actorID string) (*domain.Catalog, error) {
	catalog, level, err := uc.resolver.ResolveByID(ctx, catalogID, actorID)
	if err != nil {
		return nil, err
	}
	if !level.CanRead() {
		return nil, domain.ErrCatalogNotFound
	}
	if level != domain.AccessOwner {
		return nil, domain.ErrForbidden
	}
	return catalog, nil
}

// notify 尽力而为的通知分发，失败由 Notifier 实现捕获
func (uc *ShareUsecase) notify(ctx context.Context, userID, kind string, payload map[string]interface{}) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, userID, kind, payload)
}
