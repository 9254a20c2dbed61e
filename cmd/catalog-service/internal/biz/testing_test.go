package biz

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

// memCatalogRepo 内存名录仓储
type memCatalogRepo struct {
	mu       sync.Mutex
	catalogs map[string]*domain.Catalog
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{catalogs: make(map[string]*domain.Catalog)}
}

func (r *memCatalogRepo) CreateCatalog(_ context.Context, catalog *domain.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.catalogs {
		if c.OwnerID == catalog.OwnerID && c.Name == catalog.Name {
			return domain.ErrCatalogNameTaken
		}
	}
	clone := *catalog
	r.catalogs[catalog.ID] = &clone
	return nil
}

func (r *memCatalogRepo) GetCatalog(_ context.Context, id string) (*domain.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.catalogs[id]
	if !ok {
		return nil, domain.ErrCatalogNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memCatalogRepo) ListCatalogsByOwner(_ context.Context, ownerID string) ([]*domain.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Catalog
	for _, c := range r.catalogs {
		if c.OwnerID == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memCatalogRepo) UpdateCatalog(_ context.Context, id, ownerID string, update *domain.CatalogUpdate) (*domain.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.catalogs[id]
	if !ok || c.OwnerID != ownerID {
		return nil, domain.ErrCatalogNotFound
	}
	if update.Name != nil {
		for _, other := range r.catalogs {
			if other.ID != id && other.OwnerID == ownerID && other.Name == *update.Name {
				return nil, domain.ErrCatalogNameTaken
			}
		}
		c.Name = *update.Name
	}
	if update.Description != nil {
		c.Description = *update.Description
	}
	clone := *c
	return &clone, nil
}

func (r *memCatalogRepo) DeleteCatalog(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.catalogs[id]
	if !ok || c.OwnerID != ownerID {
		return false, nil
	}
	delete(r.catalogs, id)
	return true, nil
}

// memLinkRepo 内存条目关联仓储
type memLinkRepo struct {
	mu    sync.Mutex
	links []*domain.CatalogEntryLink
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{}
}

func (r *memLinkRepo) CreateLink(_ context.Context, link *domain.CatalogEntryLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.CatalogID == link.CatalogID && l.EntryID == link.EntryID {
			return domain.ErrEntryAlreadyLinked
		}
	}
	clone := *link
	r.links = append(r.links, &clone)
	return nil
}

func (r *memLinkRepo) DeleteLink(_ context.Context, catalogID, entryID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.links {
		if l.CatalogID == catalogID && l.EntryID == entryID {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memLinkRepo) IsLinked(_ context.Context, catalogID, entryID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.CatalogID == catalogID && l.EntryID == entryID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLinkRepo) ListLinks(_ context.Context, catalogID string) ([]*domain.CatalogEntryLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CatalogEntryLink
	for _, l := range r.links {
		if l.CatalogID == catalogID {
			clone := *l
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memLinkRepo) ListCatalogIDsForEntry(_ context.Context, entryID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.links {
		if l.EntryID == entryID {
			out = append(out, l.CatalogID)
		}
	}
	return out, nil
}

func (r *memLinkRepo) RemoveAllForEntry(_ context.Context, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.links[:0]
	for _, l := range r.links {
		if l.EntryID != entryID {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return nil
}

func (r *memLinkRepo) RemoveAllForCatalog(_ context.Context, catalogID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.links[:0]
	for _, l := range r.links {
		if l.CatalogID != catalogID {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return nil
}

func (r *memLinkRepo) CountByCatalog(_ context.Context, catalogID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.links {
		if l.CatalogID == catalogID {
			n++
		}
	}
	return n, nil
}

// memShareRepo 内存共享仓储
type memShareRepo struct {
	mu     sync.Mutex
	shares map[string]*domain.CatalogShare
}

func newMemShareRepo() *memShareRepo {
	return &memShareRepo{shares: make(map[string]*domain.CatalogShare)}
}

func (r *memShareRepo) CreateShare(_ context.Context, share *domain.CatalogShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shares {
		if s.CatalogID == share.CatalogID && s.InviteeID == share.InviteeID {
			return domain.ErrDuplicateInvitation
		}
	}
	clone := *share
	r.shares[share.ID] = &clone
	return nil
}

func (r *memShareRepo) GetShare(_ context.Context, id string) (*domain.CatalogShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[id]
	if !ok {
		return nil, domain.ErrShareNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *memShareRepo) FindByCatalogAndInvitee(_ context.Context, catalogID, inviteeID string) (*domain.CatalogShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shares {
		if s.CatalogID == catalogID && s.InviteeID == inviteeID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memShareRepo) UpdateShare(_ context.Context, share *domain.CatalogShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shares[share.ID]; !ok {
		return domain.ErrShareNotFound
	}
	clone := *share
	r.shares[share.ID] = &clone
	return nil
}

func (r *memShareRepo) ListCollaborators(_ context.Context, catalogID string) ([]*domain.CatalogShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CatalogShare
	for _, s := range r.shares {
		if s.CatalogID == catalogID && s.Status != domain.ShareRevoked {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memShareRepo) ListPendingForInvitee(_ context.Context, inviteeID string) ([]*domain.CatalogShare, error) {
	return r.listByInviteeStatus(inviteeID, domain.SharePending), nil
}

func (r *memShareRepo) ListAcceptedForInvitee(_ context.Context, inviteeID string) ([]*domain.CatalogShare, error) {
	return r.listByInviteeStatus(inviteeID, domain.ShareAccepted), nil
}

func (r *memShareRepo) listByInviteeStatus(inviteeID string, status domain.ShareStatus) []*domain.CatalogShare {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CatalogShare
	for _, s := range r.shares {
		if s.InviteeID == inviteeID && s.Status == status {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out
}

func (r *memShareRepo) RemoveAllForCatalog(_ context.Context, catalogID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.shares {
		if s.CatalogID == catalogID {
			delete(r.shares, id)
		}
	}
	return nil
}

// MockEntryStore 模拟条目服务
type MockEntryStore struct {
	GetEntryOwnerFunc      func(ctx context.Context, entryID string) (string, error)
	ListEntrySummariesFunc func(ctx context.Context, entryIDs []string) ([]*domain.EntrySummary, error)
}

func (m *MockEntryStore) GetEntryOwner(ctx context.Context, entryID string) (string, error) {
	if m.GetEntryOwnerFunc != nil {
		return m.GetEntryOwnerFunc(ctx, entryID)
	}
	return "", domain.ErrEntryNotFound
}

func (m *MockEntryStore) ListEntrySummaries(ctx context.Context, entryIDs []string) ([]*domain.EntrySummary, error) {
	if m.ListEntrySummariesFunc != nil {
		return m.ListEntrySummariesFunc(ctx, entryIDs)
	}
	return nil, nil
}

// MockUserDirectory 模拟身份服务
type MockUserDirectory struct {
	UserExistsFunc func(ctx context.Context, userID string) (bool, error)
}

func (m *MockUserDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	if m.UserExistsFunc != nil {
		return m.UserExistsFunc(ctx, userID)
	}
	return true, nil
}

// MockNotifier 记录通知调用
type MockNotifier struct {
	mu    sync.Mutex
	Calls []NotifyCall
}

type NotifyCall struct {
	UserID  string
	Kind    string
	Payload map[string]interface{}
}

func (m *MockNotifier) Notify(_ context.Context, userID, kind string, payload map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, NotifyCall{UserID: userID, Kind: kind, Payload: payload})
}

// MockBroadcaster 记录广播调用
type MockBroadcaster struct {
	mu       sync.Mutex
	Entries  []string // 收到 entriesUpdated 的名录
	Metadata []string // 收到 metadataUpdated 的名录
	Deleted  []string // 收到 deleted 的名录
}

func (m *MockBroadcaster) EntriesUpdated(catalogID string, _ []*domain.CatalogEntryDetail, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, catalogID)
}

func (m *MockBroadcaster) MetadataUpdated(catalog *domain.Catalog, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Metadata = append(m.Metadata, catalog.ID)
}

func (m *MockBroadcaster) CatalogDeleted(catalogID string, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, catalogID)
}

// staticMediaResolver 测试用媒体解析
type staticMediaResolver struct{}

func (staticMediaResolver) Resolve(path string) string {
	return "https://media.test/" + path
}

// fixture 测试装配：内存仓储 + 模拟外部服务上的完整用例栈
type fixture struct {
	catalogRepo *memCatalogRepo
	linkRepo    *memLinkRepo
	shareRepo   *memShareRepo
	entries     *MockEntryStore
	users       *MockUserDirectory
	notifier    *MockNotifier
	broadcaster *MockBroadcaster

	resolver *PermissionResolver
	catalogs *CatalogUsecase
	links    *EntryLinkUsecase
	shares   *ShareUsecase
}

func newFixture() *fixture {
	f := &fixture{
		catalogRepo: newMemCatalogRepo(),
		linkRepo:    newMemLinkRepo(),
		shareRepo:   newMemShareRepo(),
		entries:     &MockEntryStore{},
		users:       &MockUserDirectory{},
		notifier:    &MockNotifier{},
		broadcaster: &MockBroadcaster{},
	}

	logger := log.DefaultLogger
	f.resolver = NewPermissionResolver(f.catalogRepo, f.shareRepo, logger)
	f.catalogs = NewCatalogUsecase(f.catalogRepo, f.linkRepo, f.shareRepo, f.resolver, f.broadcaster, logger)
	f.links = NewEntryLinkUsecase(f.linkRepo, f.entries, f.resolver, staticMediaResolver{}, f.broadcaster, logger)
	f.shares = NewShareUsecase(f.catalogRepo, f.shareRepo, f.users, f.resolver, f.notifier, logger)
	return f
}

// mustCatalog 创建测试名录
func (f *fixture) mustCatalog(t *testing.T, ownerID, name string) *domain.Catalog {
	t.Helper()
	catalog, err := f.catalogs.CreateCatalog(context.Background(), ownerID, name, "")
	if err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	return catalog
}

// mustAcceptedShare 创建并接受一条共享
func (f *fixture) mustAcceptedShare(t *testing.T, catalogID, ownerID, inviteeID string, role domain.ShareRole) *domain.CatalogShare {
	t.Helper()
	share, err := f.shares.InviteCollaborator(context.Background(), catalogID, ownerID, inviteeID, role)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	share, err = f.shares.RespondToInvitation(context.Background(), share.ID, inviteeID, true)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	return share
}
