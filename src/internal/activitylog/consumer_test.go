package activitylog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	batches [][]models.ActivityLogMessage
	polls   int
}

func (f *fakeSource) Poll(ctx context.Context, batchSize int) ([]models.ActivityLogMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeSource) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

type fakeLogRepository struct {
	mu        sync.Mutex
	inserted  []*ActivityLog
	insertErr error
}

func (f *fakeLogRepository) InsertBatch(ctx context.Context, logs []*ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, logs...)
	return nil
}

func (f *fakeLogRepository) Search(ctx context.Context, req *SearchRequest) ([]*ActivityLog, int64, error) {
	return nil, 0, nil
}

func (f *fakeLogRepository) Count(ctx context.Context, req *SearchRequest) (int64, error) {
	return 0, nil
}

func (f *fakeLogRepository) insertedLogs() []*ActivityLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ActivityLog(nil), f.inserted...)
}

type fakeContextService struct {
	defaults     map[string]string
	resolveCalls int
}

func (f *fakeContextService) ResolveDefaultWorkspace(ctx context.Context, userID string) (string, error) {
	f.resolveCalls++
	if workspaceID, ok := f.defaults[userID]; ok {
		return workspaceID, nil
	}
	return "", models.ErrWorkspaceNotFound
}

func (f *fakeContextService) ValidateAccess(ctx context.Context, userID, workspaceID string) (bool, error) {
	return workspaceID != "" && f.defaults[userID] == workspaceID, nil
}

func (f *fakeContextService) SetContext(ctx context.Context, userID string, workspaceIDs []string) error {
	return nil
}

func (f *fakeContextService) Invalidate(ctx context.Context, userID string) error {
	return nil
}

func consumerConfig() *config.Configuration {
	return &config.Configuration{
		Consumer: config.ConsumerConfig{
			BatchSize:         100,
			PollingIntervalMs: 5,
			MaxWaitTimeMs:     50,
		},
	}
}

func message(activityType, workspaceID, createdBy string) models.ActivityLogMessage {
	return models.ActivityLogMessage{
		ActivityType: activityType,
		WorkspaceID:  workspaceID,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}
}

func TestProcessBatch_ResolvesMissingWorkspaceIDs(t *testing.T) {
	repo := &fakeLogRepository{}
	contexts := &fakeContextService{defaults: map[string]string{
		"user-1": "ws-1",
		"user-2": "ws-2",
	}}
	consumer := NewConsumer(&fakeSource{}, repo, contexts, consumerConfig())

	batch := []models.ActivityLogMessage{
		message("PROJECT_CREATED", "", "user-1"),
		message("ROLE_CREATED", "", "user-2"),
		message("ROLE_CREATED", "", "user-1"),
	}

	result := consumer.processBatch(context.Background(), batch)

	require.NoError(t, result.Err)
	assert.Equal(t, 3, result.Persisted)

	inserted := repo.insertedLogs()
	require.Len(t, inserted, 3)
	assert.Equal(t, "ws-1", inserted[0].WorkspaceID)
	assert.Equal(t, "ws-2", inserted[1].WorkspaceID)
	assert.Equal(t, "ws-1", inserted[2].WorkspaceID)

	// conversion preserves poll order
	assert.Equal(t, TypeProjectCreated, inserted[0].ActivityType)
	assert.Equal(t, TypeRoleCreated, inserted[1].ActivityType)

	for _, entry := range inserted {
		assert.NotEmpty(t, entry.ID)
		assert.NotEmpty(t, entry.WorkspaceID, "workspaceId must never be empty once persisted")
	}
}

func TestProcessBatch_UnknownActivityTypeDropsWholeBatch(t *testing.T) {
	repo := &fakeLogRepository{}
	contexts := &fakeContextService{defaults: map[string]string{"user-1": "ws-1"}}
	consumer := NewConsumer(&fakeSource{}, repo, contexts, consumerConfig())

	batch := []models.ActivityLogMessage{
		message("PROJECT_CREATED", "ws-1", "user-1"),
		message("NOT_A_REAL_TYPE", "ws-1", "user-1"),
		message("ROLE_CREATED", "ws-1", "user-1"),
	}

	result := consumer.processBatch(context.Background(), batch)

	require.ErrorIs(t, result.Err, models.ErrConversionFailed)
	assert.Zero(t, result.Persisted)
	assert.Empty(t, repo.insertedLogs(), "a conversion failure must discard the entire batch")
}

func TestProcessBatch_ResolverNotFoundDropsWholeBatch(t *testing.T) {
	repo := &fakeLogRepository{}
	contexts := &fakeContextService{defaults: map[string]string{}}
	consumer := NewConsumer(&fakeSource{}, repo, contexts, consumerConfig())

	batch := []models.ActivityLogMessage{
		message("PROJECT_CREATED", "ws-1", "user-1"),
		message("ROLE_CREATED", "", "user-without-workspace"),
	}

	result := consumer.processBatch(context.Background(), batch)

	require.ErrorIs(t, result.Err, models.ErrConversionFailed)
	assert.Empty(t, repo.insertedLogs())
}

func TestProcessBatch_PersistFailureIsAllOrNothing(t *testing.T) {
	repo := &fakeLogRepository{insertErr: errors.New("write conflict")}
	contexts := &fakeContextService{defaults: map[string]string{"user-3": "ws-3"}}
	consumer := NewConsumer(&fakeSource{}, repo, contexts, consumerConfig())

	batch := []models.ActivityLogMessage{
		message("PROJECT_CREATED", "ws-1", "user-1"),
		message("ROLE_CREATED", "ws-2", "user-2"),
		message("ROLE_STATUS_UPDATE", "", "user-3"),
	}

	result := consumer.processBatch(context.Background(), batch)

	require.Error(t, result.Err)
	assert.Equal(t, 3, result.Received)
	assert.Zero(t, result.Persisted)
	assert.Empty(t, repo.insertedLogs(), "a store failure must persist zero rows for the tick")
	assert.Equal(t, 1, contexts.resolveCalls)
}

func TestProcessBatch_ExplicitWorkspaceSkipsResolver(t *testing.T) {
	repo := &fakeLogRepository{}
	contexts := &fakeContextService{defaults: map[string]string{}}
	consumer := NewConsumer(&fakeSource{}, repo, contexts, consumerConfig())

	batch := []models.ActivityLogMessage{
		message("PROJECT_CREATED", "ws-9", "user-1"),
	}

	result := consumer.processBatch(context.Background(), batch)

	require.NoError(t, result.Err)
	assert.Zero(t, contexts.resolveCalls)
	assert.Equal(t, "ws-9", repo.insertedLogs()[0].WorkspaceID)
}

func TestConsumer_StartDrainsQueueAndStops(t *testing.T) {
	source := &fakeSource{batches: [][]models.ActivityLogMessage{
		{message("PROJECT_CREATED", "ws-1", "user-1")},
	}}
	repo := &fakeLogRepository{}
	contexts := &fakeContextService{defaults: map[string]string{}}
	consumer := NewConsumer(source, repo, contexts, consumerConfig())

	consumer.Start(context.Background())

	require.Eventually(t, func() bool {
		return len(repo.insertedLogs()) == 1
	}, time.Second, 5*time.Millisecond)

	consumer.Stop()
	polls := source.pollCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, polls, source.pollCount(), "no polls may happen after Stop returns")
}
