package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShareRole 协作角色
type ShareRole string

const (
	// RoleViewer 只读角色
	RoleViewer ShareRole = "viewer"
	// RoleEditor 可编辑角色（可关联/解除关联条目）
	RoleEditor ShareRole = "editor"
)

// IsValid 角色是否合法
func (r ShareRole) IsValid() bool {
	return r == RoleViewer || r == RoleEditor
}

// ShareStatus 邀请状态
type ShareStatus string

const (
	// SharePending 待处理
	SharePending ShareStatus = "pending"
	// ShareAccepted 已接受
	ShareAccepted ShareStatus = "accepted"
	// ShareDeclined 已拒绝
	ShareDeclined ShareStatus = "declined"
	// ShareRevoked 已撤销
	ShareRevoked ShareStatus = "revoked"
)

// CatalogShare 名录共享记录
// 每个 (catalog, invitee) 只存在一条可变记录，状态字段承载完整的生命周期，
// 不采用追加式的邀请日志
type CatalogShare struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	CatalogID   string      `json:"catalog_id" gorm:"uniqueIndex:idx_catalog_invitee;index"`
	OwnerID     string      `json:"owner_id" gorm:"index"`
	InviteeID   string      `json:"invitee_id" gorm:"uniqueIndex:idx_catalog_invitee;index"`
	InvitedByID string      `json:"invited_by_id"`
	Role        ShareRole   `json:"role"`
	Status      ShareStatus `json:"status" gorm:"index"`
	RespondedAt *time.Time  `json:"responded_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName specifies the table name
func (CatalogShare) TableName() string {
	return "catalog_shares"
}

// NewCatalogShare 创建待处理的共享记录
func NewCatalogShare(catalogID, ownerID, inviteeID, invitedByID string, role ShareRole) (*CatalogShare, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	return &CatalogShare{
		ID:          uuid.New().String(),
		CatalogID:   catalogID,
		OwnerID:     ownerID,
		InviteeID:   inviteeID,
		InvitedByID: invitedByID,
		Role:        role,
		Status:      SharePending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

// Respond 受邀者响应邀请
// 只有 pending 状态可以响应，重复响应返回 ErrShareNotPending
func (s *CatalogShare) Respond(accept bool) error {
	if s.Status != SharePending {
		return ErrShareNotPending
	}

	if accept {
		s.Status = ShareAccepted
	} else {
		s.Status = ShareDeclined
	}

	now := time.Now()
	s.RespondedAt = &now
	s.UpdatedAt = now
	return nil
}

// Revoke 所有者撤销共享，任意状态均可撤销
func (s *CatalogShare) Revoke() {
	now := time.Now()
	s.Status = ShareRevoked
	s.RespondedAt = &now
	s.UpdatedAt = now
}

// Restore 重新邀请已撤销的记录
// 状态复位为 pending，角色重置为新邀请的角色，不创建第二条记录
func (s *CatalogShare) Restore(role ShareRole, invitedByID string) error {
	if s.Status != ShareRevoked {
		return ErrDuplicateInvitation
	}
	if !role.IsValid() {
		return ErrInvalidRole
	}

	now := time.Now()
	s.Status = SharePending
	s.Role = role
	s.InvitedByID = invitedByID
	s.RespondedAt = &now
	s.UpdatedAt = now
	return nil
}

// ChangeRole 所有者调整角色，不影响状态
func (s *CatalogShare) ChangeRole(role ShareRole) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	s.Role = role
	s.UpdatedAt = time.Now()
	return nil
}

// IsAccepted 是否为已接受状态
func (s *CatalogShare) IsAccepted() bool {
	return s.Status == ShareAccepted
}
