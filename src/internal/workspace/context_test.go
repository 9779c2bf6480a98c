package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContextStore struct {
	data map[string]string
	ttls map[string]time.Duration

	getCalls    int
	setCalls    int
	ttlCalls    int
	expireCalls int
	deleteCalls int

	getErr error
	setErr error
}

func newFakeContextStore() *fakeContextStore {
	return &fakeContextStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeContextStore) Get(ctx context.Context, key string) (string, error) {
	f.getCalls++
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.data[key], nil
}

func (f *fakeContextStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeContextStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	f.ttlCalls++
	return f.ttls[key], nil
}

func (f *fakeContextStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.expireCalls++
	f.ttls[key] = ttl
	return nil
}

func (f *fakeContextStore) DeleteByPattern(ctx context.Context, pattern string) error {
	f.deleteCalls++
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
			delete(f.ttls, key)
		}
	}
	return nil
}

type fakeWorkspaceFinder struct {
	workspaces []*Workspace
	err        error
	findCalls  int
}

func (f *fakeWorkspaceFinder) FindActiveByMember(ctx context.Context, userID string) ([]*Workspace, error) {
	f.findCalls++
	return f.workspaces, f.err
}

func testCacheConfig() *config.Configuration {
	return &config.Configuration{
		Cache: config.CacheConfig{
			ContextExpirationHours:       24,
			ContextRefreshThresholdHours: 6,
		},
	}
}

func activeWorkspace(id string) *Workspace {
	return &Workspace{ID: id, Status: StatusActive}
}

func TestResolveDefaultWorkspace_SingleWorkspace(t *testing.T) {
	store := newFakeContextStore()
	finder := &fakeWorkspaceFinder{workspaces: []*Workspace{activeWorkspace("ws-1")}}
	svc := NewContextService(store, finder, testCacheConfig())

	workspaceID, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "ws-1", workspaceID)
	assert.Equal(t, "ws-1", store.data["workspace_context:user-1"])
	assert.Equal(t, 24*time.Hour, store.ttls["workspace_context:user-1"])
}

func TestResolveDefaultWorkspace_NoWorkspaces(t *testing.T) {
	store := newFakeContextStore()
	finder := &fakeWorkspaceFinder{}
	svc := NewContextService(store, finder, testCacheConfig())

	_, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")

	require.ErrorIs(t, err, models.ErrWorkspaceNotFound)
	assert.Zero(t, store.setCalls, "cache must stay unpopulated on NotFound")
}

func TestResolveDefaultWorkspace_CacheHitSkipsStore(t *testing.T) {
	store := newFakeContextStore()
	store.data["workspace_context:user-1"] = "ws-a,ws-b"
	store.ttls["workspace_context:user-1"] = 10 * time.Hour
	finder := &fakeWorkspaceFinder{}
	svc := NewContextService(store, finder, testCacheConfig())

	workspaceID, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "ws-a", workspaceID)
	assert.Zero(t, finder.findCalls, "cache hit must not touch the workspace store")
}

func TestResolveDefaultWorkspace_FailOpenOnStoreError(t *testing.T) {
	store := newFakeContextStore()
	store.getErr = models.ErrRedisGet
	finder := &fakeWorkspaceFinder{workspaces: []*Workspace{activeWorkspace("ws-1")}}
	svc := NewContextService(store, finder, testCacheConfig())

	workspaceID, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "ws-1", workspaceID)
	assert.Equal(t, 1, finder.findCalls)
}

func TestValidateAccess_EmptyWorkspaceID(t *testing.T) {
	store := newFakeContextStore()
	finder := &fakeWorkspaceFinder{workspaces: []*Workspace{activeWorkspace("ws-1")}}
	svc := NewContextService(store, finder, testCacheConfig())

	allowed, err := svc.ValidateAccess(context.Background(), "user-1", "")

	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, store.getCalls, "empty workspace id must not hit the cache")
	assert.Zero(t, finder.findCalls, "empty workspace id must not hit the store")
}

func TestValidateAccess_RebuildsOnMiss(t *testing.T) {
	store := newFakeContextStore()
	finder := &fakeWorkspaceFinder{workspaces: []*Workspace{activeWorkspace("ws-1"), activeWorkspace("ws-2")}}
	svc := NewContextService(store, finder, testCacheConfig())

	allowed, err := svc.ValidateAccess(context.Background(), "user-1", "ws-2")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.ValidateAccess(context.Background(), "user-1", "ws-3")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestValidateAccess_UserWithoutWorkspaces(t *testing.T) {
	store := newFakeContextStore()
	finder := &fakeWorkspaceFinder{}
	svc := NewContextService(store, finder, testCacheConfig())

	allowed, err := svc.ValidateAccess(context.Background(), "user-1", "ws-1")

	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSetContextThenResolve(t *testing.T) {
	store := newFakeContextStore()
	finder := &fakeWorkspaceFinder{}
	svc := NewContextService(store, finder, testCacheConfig())

	require.NoError(t, svc.SetContext(context.Background(), "user-1", []string{"ws-a", "ws-b", "ws-c"}))

	workspaceID, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ws-a", workspaceID)

	allowed, err := svc.ValidateAccess(context.Background(), "user-1", "ws-b")
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.Zero(t, finder.findCalls, "explicit SetContext must satisfy later reads")
}

func TestTouch_RefreshesExpiringEntry(t *testing.T) {
	store := newFakeContextStore()
	store.data["workspace_context:user-1"] = "ws-1"
	store.ttls["workspace_context:user-1"] = 2 * time.Hour
	svc := NewContextService(store, &fakeWorkspaceFinder{}, testCacheConfig())

	_, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, store.expireCalls)
	assert.Equal(t, 24*time.Hour, store.ttls["workspace_context:user-1"])
	assert.Equal(t, "ws-1", store.data["workspace_context:user-1"], "refresh must not alter the stored value")
}

func TestTouch_LeavesFreshEntryAlone(t *testing.T) {
	store := newFakeContextStore()
	store.data["workspace_context:user-1"] = "ws-1"
	store.ttls["workspace_context:user-1"] = 10 * time.Hour
	svc := NewContextService(store, &fakeWorkspaceFinder{}, testCacheConfig())

	_, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Zero(t, store.expireCalls)
	assert.Equal(t, 10*time.Hour, store.ttls["workspace_context:user-1"])
}

func TestInvalidate_RemovesUserEntries(t *testing.T) {
	store := newFakeContextStore()
	store.data["workspace_context:user-1"] = "ws-1"
	store.data["workspace_context:user-2"] = "ws-2"
	svc := NewContextService(store, &fakeWorkspaceFinder{}, testCacheConfig())

	require.NoError(t, svc.Invalidate(context.Background(), "user-1"))

	assert.NotContains(t, store.data, "workspace_context:user-1")
	assert.Contains(t, store.data, "workspace_context:user-2")
}

func TestResolveDefaultWorkspace_PropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := newFakeContextStore()
	finder := &fakeWorkspaceFinder{err: storeErr}
	svc := NewContextService(store, finder, testCacheConfig())

	_, err := svc.ResolveDefaultWorkspace(context.Background(), "user-1")

	require.ErrorIs(t, err, storeErr)
}
