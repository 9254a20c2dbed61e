package domain

// AccessLevel 用户对名录的有效访问级别（派生值，不落库）
type AccessLevel string

const (
	// AccessOwner 所有者
	AccessOwner AccessLevel = "owner"
	// AccessEditor 已接受的编辑协作者
	AccessEditor AccessLevel = "editor"
	// AccessViewer 已接受的只读协作者
	AccessViewer AccessLevel = "viewer"
	// AccessNone 无访问权限
	AccessNone AccessLevel = "none"
)

// CanRead 是否可读取名录内容
func (a AccessLevel) CanRead() bool {
	return a == AccessOwner || a == AccessEditor || a == AccessViewer
}

// CanEdit 是否可修改名录条目
func (a AccessLevel) CanEdit() bool {
	return a == AccessOwner || a == AccessEditor
}

// AccessFromShare 根据共享记录推导访问级别
// 只有 accepted 状态授予角色权限，其余状态（含 pending）一律视为无权限
func AccessFromShare(share *CatalogShare) AccessLevel {
	if share == nil || share.Status != ShareAccepted {
		return AccessNone
	}

	switch share.Role {
	case RoleEditor:
		return AccessEditor
	case RoleViewer:
		return AccessViewer
	default:
		return AccessNone
	}
}
