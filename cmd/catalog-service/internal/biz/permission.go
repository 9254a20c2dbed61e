package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// PermissionResolver 访问权限解析器
// 所有者判断是 O(1) 字段比较，否则查找 accepted 状态的共享记录
type PermissionResolver struct {
	catalogRepo domain.CatalogRepository
	shareRepo   domain.ShareRepository
	logger      *log.Helper
}

// NewPermissionResolver 创建权限解析器
func NewPermissionResolver(
	catalogRepo domain.CatalogRepository,
	shareRepo domain.ShareRepository,
	logger log.Logger,
) *PermissionResolver {
	return &PermissionResolver{
		catalogRepo: catalogRepo,
		shareRepo:   shareRepo,
		logger:      log.NewHelper(log.With(logger, "module", "permission")),
	}
}

// Resolve 计算用户对名录的有效访问级别
func (p *PermissionResolver) Resolve(ctx context.Context, catalog *domain.Catalog, userID string) (domain.AccessLevel, error) {
	if catalog.IsOwnedBy(userID) {
		return domain.AccessOwner, nil
	}

	share, err := p.shareRepo.FindByCatalogAndInvitee(ctx, catalog.ID, userID)
	if err != nil {
		return domain.AccessNone, err
	}

	return domain.AccessFromShare(share), nil
}

// ResolveByID 按名录 ID 计算访问级别，并返回名录本身
// 名录不存在时返回 domain.ErrCatalogNotFound
func (p *PermissionResolver) ResolveByID(ctx context.Context, catalogID, userID string) (*domain.Catalog, domain.AccessLevel, error) {
	catalog, err := p.catalogRepo.GetCatalog(ctx, catalogID)
	if err != nil {
		return nil, domain.AccessNone, err
	}

	level, err := p.Resolve(ctx, catalog, userID)
	if err != nil {
		return nil, domain.AccessNone, err
	}

	return catalog, level, nil
}

// CheckAccess 实时订阅的访问校验
// 订阅时重新校验权限，不复用 HTTP 链路上的授权结论
func (p *PermissionResolver) CheckAccess(ctx context.Context, catalogID, userID string) error {
	_, level, err := p.ResolveByID(ctx, catalogID, userID)
	if err != nil {
		return err
	}
	if !level.CanRead() {
		return domain.ErrForbidden
	}
	return nil
}
