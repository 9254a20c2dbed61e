package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCatalogShare(t *testing.T) {
	share, err := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleEditor)

	assert.NoError(t, err)
	assert.Equal(t, SharePending, share.Status)
	assert.Equal(t, RoleEditor, share.Role)
	assert.Nil(t, share.RespondedAt)
	assert.NotEmpty(t, share.ID)
}

func TestNewCatalogShare_InvalidRole(t *testing.T) {
	_, err := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", ShareRole("admin"))

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestShareRespond_Accept(t *testing.T) {
	share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleViewer)

	err := share.Respond(true)

	assert.NoError(t, err)
	assert.Equal(t, ShareAccepted, share.Status)
	assert.NotNil(t, share.RespondedAt)
	assert.True(t, share.IsAccepted())
}

func TestShareRespond_Decline(t *testing.T) {
	share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleViewer)

	err := share.Respond(false)

	assert.NoError(t, err)
	assert.Equal(t, ShareDeclined, share.Status)
	assert.False(t, share.IsAccepted())
}

func TestShareRespond_AlreadyResponded(t *testing.T) {
	share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleViewer)
	_ = share.Respond(true)

	// 重复响应被拒绝，状态不变
	err := share.Respond(false)

	assert.ErrorIs(t, err, ErrShareNotPending)
	assert.Equal(t, ShareAccepted, share.Status)
}

func TestShareRevoke_AnyStatus(t *testing.T) {
	for _, prepare := range []func(s *CatalogShare){
		func(s *CatalogShare) {},                      // pending
		func(s *CatalogShare) { _ = s.Respond(true) }, // accepted
		func(s *CatalogShare) { _ = s.Respond(false) }, // declined
	} {
		share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleEditor)
		prepare(share)

		share.Revoke()

		assert.Equal(t, ShareRevoked, share.Status)
		assert.NotNil(t, share.RespondedAt)
	}
}

func TestShareRestore(t *testing.T) {
	share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleViewer)
	_ = share.Respond(true)
	share.Revoke()

	// 重新邀请：复位为 pending，采用新角色
	err := share.Restore(RoleEditor, "owner-1")

	assert.NoError(t, err)
	assert.Equal(t, SharePending, share.Status)
	assert.Equal(t, RoleEditor, share.Role)
}

func TestShareRestore_NotRevoked(t *testing.T) {
	share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleViewer)

	err := share.Restore(RoleEditor, "owner-1")

	assert.ErrorIs(t, err, ErrDuplicateInvitation)
	assert.Equal(t, SharePending, share.Status)
}

func TestShareChangeRole_KeepsStatus(t *testing.T) {
	share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleViewer)
	_ = share.Respond(true)

	err := share.ChangeRole(RoleEditor)

	assert.NoError(t, err)
	assert.Equal(t, RoleEditor, share.Role)
	assert.Equal(t, ShareAccepted, share.Status)
}

func TestShareChangeRole_InvalidRole(t *testing.T) {
	share, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleViewer)

	err := share.ChangeRole(ShareRole("superuser"))

	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Equal(t, RoleViewer, share.Role)
}

func TestAccessFromShare(t *testing.T) {
	accepted, _ := NewCatalogShare("cat-1", "owner-1", "invitee-1", "owner-1", RoleEditor)
	_ = accepted.Respond(true)
	assert.Equal(t, AccessEditor, AccessFromShare(accepted))

	viewer, _ := NewCatalogShare("cat-1", "owner-1", "invitee-2", "owner-1", RoleViewer)
	_ = viewer.Respond(true)
	assert.Equal(t, AccessViewer, AccessFromShare(viewer))

	// pending 不授予权限
	pending, _ := NewCatalogShare("cat-1", "owner-1", "invitee-3", "owner-1", RoleEditor)
	assert.Equal(t, AccessNone, AccessFromShare(pending))

	// revoked 不授予权限
	revoked, _ := NewCatalogShare("cat-1", "owner-1", "invitee-4", "owner-1", RoleEditor)
	revoked.Revoke()
	assert.Equal(t, AccessNone, AccessFromShare(revoked))

	assert.Equal(t, AccessNone, AccessFromShare(nil))
}

func TestAccessLevel_Permissions(t *testing.T) {
	assert.True(t, AccessOwner.CanRead())
	assert.True(t, AccessOwner.CanEdit())
	assert.True(t, AccessEditor.CanRead())
	assert.True(t, AccessEditor.CanEdit())
	assert.True(t, AccessViewer.CanRead())
	assert.False(t, AccessViewer.CanEdit())
	assert.False(t, AccessNone.CanRead())
	assert.False(t, AccessNone.CanEdit())
}

func TestNewCatalog(t *testing.T) {
	catalog, err := NewCatalog("owner-1", "  Spring Birds  ", "  morning walks  ")

	assert.NoError(t, err)
	assert.Equal(t, "Spring Birds", catalog.Name)
	assert.Equal(t, "morning walks", catalog.Description)
	assert.True(t, catalog.IsOwnedBy("owner-1"))
	assert.False(t, catalog.IsOwnedBy("other"))
}

func TestNewCatalog_Invalid(t *testing.T) {
	_, err := NewCatalog("owner-1", "   ", "")
	assert.ErrorIs(t, err, ErrInvalidCatalogName)

	_, err = NewCatalog("owner-1", strings.Repeat("x", MaxCatalogNameLength+1), "")
	assert.ErrorIs(t, err, ErrInvalidCatalogName)

	_, err = NewCatalog("owner-1", "ok", strings.Repeat("x", MaxCatalogDescriptionLength+1))
	assert.ErrorIs(t, err, ErrInvalidDescription)

	_, err = NewCatalog("", "ok", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogRename(t *testing.T) {
	catalog, _ := NewCatalog("owner-1", "Old", "")

	assert.NoError(t, catalog.Rename("New Name"))
	assert.Equal(t, "New Name", catalog.Name)

	assert.ErrorIs(t, catalog.Rename(""), ErrInvalidCatalogName)
	assert.Equal(t, "New Name", catalog.Name)
}

func TestCatalogUpdate_IsEmpty(t *testing.T) {
	assert.True(t, (&CatalogUpdate{}).IsEmpty())

	name := "x"
	assert.False(t, (&CatalogUpdate{Name: &name}).IsEmpty())
}
