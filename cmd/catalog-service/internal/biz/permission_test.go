package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

func TestResolve_Owner(t *testing.T) {
	f := newFixture()
	catalog := f.mustCatalog(t, "owner-1", "Spring Birds")

	level, err := f.resolver.Resolve(context.Background(), catalog, "owner-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.AccessOwner, level)
}

func TestResolve_ShareStates(t *testing.T) {
	f := newFixture()
	catalog := f.mustCatalog(t, "owner-1", "Spring Birds")

	// 无共享记录
	level, err := f.resolver.Resolve(context.Background(), catalog, "stranger")
	assert.NoError(t, err)
	assert.Equal(t, domain.AccessNone, level)

	// pending 不授予权限
	share, err := f.shares.InviteCollaborator(context.Background(), catalog.ID, "owner-1", "invitee-1", domain.RoleEditor)
	assert.NoError(t, err)

	level, _ = f.resolver.Resolve(context.Background(), catalog, "invitee-1")
	assert.Equal(t, domain.AccessNone, level)

	// accepted 授予角色权限
	_, err = f.shares.RespondToInvitation(context.Background(), share.ID, "invitee-1", true)
	assert.NoError(t, err)

	level, _ = f.resolver.Resolve(context.Background(), catalog, "invitee-1")
	assert.Equal(t, domain.AccessEditor, level)

	// revoked 立即失效
	_, err = f.shares.RevokeCollaborator(context.Background(), catalog.ID, share.ID, "owner-1")
	assert.NoError(t, err)

	level, _ = f.resolver.Resolve(context.Background(), catalog, "invitee-1")
	assert.Equal(t, domain.AccessNone, level)
}

func TestResolveByID_NotFound(t *testing.T) {
	f := newFixture()

	_, _, err := f.resolver.ResolveByID(context.Background(), "missing", "owner-1")

	assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
}

func TestCheckAccess(t *testing.T) {
	f := newFixture()
	catalog := f.mustCatalog(t, "owner-1", "Spring Birds")
	f.mustAcceptedShare(t, catalog.ID, "owner-1", "viewer-1", domain.RoleViewer)

	assert.NoError(t, f.resolver.CheckAccess(context.Background(), catalog.ID, "owner-1"))
	assert.NoError(t, f.resolver.CheckAccess(context.Background(), catalog.ID, "viewer-1"))

	err := f.resolver.CheckAccess(context.Background(), catalog.ID, "stranger")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.resolver.CheckAccess(context.Background(), "missing", "owner-1")
	assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
}
