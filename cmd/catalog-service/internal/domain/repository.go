package domain

import "context"

// CatalogRepository 名录仓储接口
type CatalogRepository interface {
	// CreateCatalog 创建名录，(owner, name) 冲突时返回 ErrCatalogNameTaken
	CreateCatalog(ctx context.Context, catalog *Catalog) error

	// GetCatalog 获取名录
	GetCatalog(ctx context.Context, id string) (*Catalog, error)

	// ListCatalogsByOwner 列出所有者的名录，按更新时间倒序、创建时间倒序
	ListCatalogsByOwner(ctx context.Context, ownerID string) ([]*Catalog, error)

	// UpdateCatalog 所有者范围内更新名录
	// 无匹配 (id, owner) 行时返回 ErrCatalogNotFound，改名冲突时返回 ErrCatalogNameTaken
	UpdateCatalog(ctx context.Context, id, ownerID string, update *CatalogUpdate) (*Catalog, error)

	// DeleteCatalog 所有者范围内删除名录，返回是否删除了记录
	DeleteCatalog(ctx context.Context, id, ownerID string) (bool, error)
}

// EntryLinkRepository 名录条目关联仓储接口
type EntryLinkRepository interface {
	// CreateLink 关联条目，(catalog, entry) 已存在时返回 ErrEntryAlreadyLinked
	CreateLink(ctx context.Context, link *CatalogEntryLink) error

	// DeleteLink 解除关联，不存在时为幂等空操作，返回是否删除了记录
	DeleteLink(ctx context.Context, catalogID, entryID string) (bool, error)

	// IsLinked 是否已关联
	IsLinked(ctx context.Context, catalogID, entryID string) (bool, error)

	// ListLinks 列出名录的关联记录，按添加时间倒序
	ListLinks(ctx context.Context, catalogID string) ([]*CatalogEntryLink, error)

	// ListCatalogIDsForEntry 列出引用该条目的名录，用于条目删除级联
	ListCatalogIDsForEntry(ctx context.Context, entryID string) ([]string, error)

	// RemoveAllForEntry 移除该条目的全部关联（级联钩子）
	RemoveAllForEntry(ctx context.Context, entryID string) error

	// RemoveAllForCatalog 移除名录的全部关联（名录删除级联）
	RemoveAllForCatalog(ctx context.Context, catalogID string) error

	// CountByCatalog 统计名录的条目数量
	CountByCatalog(ctx context.Context, catalogID string) (int64, error)
}

// ShareRepository 名录共享仓储接口
type ShareRepository interface {
	// CreateShare 创建共享记录，(catalog, invitee) 已存在时返回 ErrDuplicateInvitation
	CreateShare(ctx context.Context, share *CatalogShare) error

	// GetShare 按 ID 获取共享记录
	GetShare(ctx context.Context, id string) (*CatalogShare, error)

	// FindByCatalogAndInvitee 查找 (catalog, invitee) 的唯一记录，至多一条
	FindByCatalogAndInvitee(ctx context.Context, catalogID, inviteeID string) (*CatalogShare, error)

	// UpdateShare 保存共享记录的状态/角色变更
	UpdateShare(ctx context.Context, share *CatalogShare) error

	// ListCollaborators 列出名录的协作者记录（不含 revoked）
	ListCollaborators(ctx context.Context, catalogID string) ([]*CatalogShare, error)

	// ListPendingForInvitee 列出用户待处理的邀请
	ListPendingForInvitee(ctx context.Context, inviteeID string) ([]*CatalogShare, error)

	// ListAcceptedForInvitee 列出用户已接受的共享
	ListAcceptedForInvitee(ctx context.Context, inviteeID string) ([]*CatalogShare, error)

	// RemoveAllForCatalog 移除名录的全部共享记录（名录删除级联）
	RemoveAllForCatalog(ctx context.Context, catalogID string) error
}

// UserDirectory 外部身份服务：用户存在性查询
type UserDirectory interface {
	// UserExists 用户是否存在
	UserExists(ctx context.Context, userID string) (bool, error)
}

// EntryStore 外部条目服务
// 条目由外部服务拥有，这里只做所有权校验与投影查询
type EntryStore interface {
	// GetEntryOwner 查询条目所有者，条目不存在时返回 ErrEntryNotFound
	GetEntryOwner(ctx context.Context, entryID string) (string, error)

	// ListEntrySummaries 批量查询条目摘要
	ListEntrySummaries(ctx context.Context, entryIDs []string) ([]*EntrySummary, error)
}

// Notifier 通知分发（fire-and-forget）
// 发送失败不得影响主操作，由实现方捕获并记录
type Notifier interface {
	Notify(ctx context.Context, userID, kind string, payload map[string]interface{})
}

// MediaURLResolver 将存储的相对媒体路径解析为外部可访问的 URL
type MediaURLResolver interface {
	Resolve(path string) string
}
