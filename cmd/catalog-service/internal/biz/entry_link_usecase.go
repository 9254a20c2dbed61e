package biz

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// EntryLinkUsecase 名录条目关联用例
type EntryLinkUsecase struct {
	linkRepo    domain.EntryLinkRepository
	entryStore  domain.EntryStore
	resolver    *PermissionResolver
	media       domain.MediaURLResolver
	broadcaster CatalogBroadcaster
	logger      *log.Helper
}

// NewEntryLinkUsecase 创建条目关联用例
func NewEntryLinkUsecase(
	linkRepo domain.EntryLinkRepository,
	entryStore domain.EntryStore,
	resolver *PermissionResolver,
	media domain.MediaURLResolver,
	broadcaster CatalogBroadcaster,
	logger log.Logger,
) *EntryLinkUsecase {
	return &EntryLinkUsecase{
		linkRepo:    linkRepo,
		entryStore:  entryStore,
		resolver:    resolver,
		media:       media,
		broadcaster: broadcaster,
		logger:      log.NewHelper(log.With(logger, "module", "entry-link-usecase")),
	}
}

// LinkEntry 将条目关联到名录
// 需要名录编辑权限，且条目必须属于操作者本人：
// 协作者只能向名录添加自己创建的条目
func (uc *EntryLinkUsecase) LinkEntry(ctx context.Context, catalogID, entryID, userID string) (*domain.CatalogEntryLink, error) {
	// 1. 名录访问校验
	_, level, err := uc.resolver.ResolveByID(ctx, catalogID, userID)
	if err != nil {
		return nil, err
	}
	if !level.CanRead() {
		return nil, domain.ErrCatalogNotFound
	}
	if !level.CanEdit() {
		return nil, domain.ErrForbidden
	}

	// 2. 条目所有权校验，编辑权限不覆盖他人条目
	entryOwner, err := uc.entryStore.GetEntryOwner(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entryOwner != userID {
		return nil, domain.ErrForbidden
	}

	// 3. 创建关联，重复关联由唯一索引拒绝
	link := domain.NewCatalogEntryLink(catalogID, entryID, userID)
	if err := uc.linkRepo.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	uc.logger.Infof("entry linked: catalog=%s entry=%s by=%s", catalogID, entryID, userID)

	// 4. 广播重新计算的完整条目列表
	uc.broadcastEntriesUpdated(ctx, catalogID, userID)
	return link, nil
}

// UnlinkEntry 解除条目关联
// 只需名录编辑权限，不要求条目所有权；条目未关联时为幂等空操作
func (uc *EntryLinkUsecase) UnlinkEntry(ctx context.Context, catalogID, entryID, userID string) error {
	_, level, err := uc.resolver.ResolveByID(ctx, catalogID, userID)
	if err != nil {
		return err
	}
	if !level.CanRead() {
		return domain.ErrCatalogNotFound
	}
	if !level.CanEdit() {
		return domain.ErrForbidden
	}

	removed, err := uc.linkRepo.DeleteLink(ctx, catalogID, entryID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	uc.logger.Infof("entry unlinked: catalog=%s entry=%s by=%s", catalogID, entryID, userID)
	uc.broadcastEntriesUpdated(ctx, catalogID, userID)
	return nil
}

// ListEntries 列出名录条目（需读取权限）
func (uc *EntryLinkUsecase) ListEntries(ctx context.Context, catalogID, userID string) ([]*domain.CatalogEntryDetail, error) {
	_, level, err := uc.resolver.ResolveByID(ctx, catalogID, userID)
	if err != nil {
		return nil, err
	}
	if !level.CanRead() {
		return nil, domain.ErrCatalogNotFound
	}

	return uc.composeEntryDetails(ctx, catalogID)
}

// OnEntryDeleted 外部条目删除的级联钩子
// 移除全部关联后，向每个受影响的名录广播重新计算的条目列表
func (uc *EntryLinkUsecase) OnEntryDeleted(ctx context.Context, entryID, deletedBy string) error {
	catalogIDs, err := uc.linkRepo.ListCatalogIDsForEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if len(catalogIDs) == 0 {
		return nil
	}

	if err := uc.linkRepo.RemoveAllForEntry(ctx, entryID); err != nil {
		return fmt.Errorf("failed to remove links for entry %s: %w", entryID, err)
	}

	uc.logger.Infof("entry cascade: entry=%s catalogs=%d", entryID, len(catalogIDs))
	for _, catalogID := range catalogIDs {
		uc.broadcastEntriesUpdated(ctx, catalogID, deletedBy)
	}
	return nil
}

// composeEntryDetails 组装条目投影：关联记录 + 外部条目摘要 + 媒体 URL 解析
func (uc *EntryLinkUsecase) composeEntryDetails(ctx context.Context, catalogID string) ([]*domain.CatalogEntryDetail, error) {
	links, err := uc.linkRepo.ListLinks(ctx, catalogID)
	if err != nil {
		return nil, err
	}

	entryIDs := make([]string, 0, len(links))
	for _, link := range links {
		entryIDs = append(entryIDs, link.EntryID)
	}

	summaries, err := uc.entryStore.ListEntrySummaries(ctx, entryIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.EntrySummary, len(summaries))
	for _, summary := range summaries {
		byID[summary.ID] = summary
	}

	details := make([]*domain.CatalogEntryDetail, 0, len(links))
	for _, link := range links {
		summary, ok := byID[link.EntryID]
		if !ok {
			// 条目已在外部被删除但级联尚未到达
			uc.logger.Warnf("linked entry missing: catalog=%s entry=%s", catalogID, link.EntryID)
			continue
		}

		detail := &domain.CatalogEntryDetail{
			EntryID:    summary.ID,
			Species:    summary.Species,
			OwnerID:    summary.OwnerID,
			ObservedAt: summary.ObservedAt,
			AddedByID:  link.AddedByID,
			AddedAt:    link.AddedAt,
		}
		if summary.ImagePath != "" {
			detail.ImageURL = uc.media.Resolve(summary.ImagePath)
		}
		details = append(details, detail)
	}

	return details, nil
}

// broadcastEntriesUpdated 重新计算条目列表并广播
// 广播失败只记录日志，主操作已经完成，不回滚
func (uc *EntryLinkUsecase) broadcastEntriesUpdated(ctx context.Context, catalogID, triggeredBy string) {
	if uc.broadcaster == nil {
		uc.logger.Warn("broadcast skipped: hub not initialized")
		return
	}

	entries, err := uc.composeEntryDetails(ctx, catalogID)
	if err != nil {
		uc.logger.Errorf("failed to compose entries for broadcast: catalog=%s err=%v", catalogID, err)
		return
	}

	uc.broadcaster.EntriesUpdated(catalogID, entries, triggeredBy)
}
