package workspace

import (
	"context"
	"errors"
	"strings"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const contextKeyPrefix = "workspace_context:"

// ContextService owns the cache-aside mapping from a user to the ordered
// set of workspace ids they can access. The first id in the list is the
// user's default workspace. The cache is an optimization layer over the
// workspace store, never a source of truth for writes.
type ContextService interface {
	ResolveDefaultWorkspace(ctx context.Context, userID string) (string, error)
	ValidateAccess(ctx context.Context, userID, workspaceID string) (bool, error)
	SetContext(ctx context.Context, userID string, workspaceIDs []string) error
	Invalidate(ctx context.Context, userID string) error
}

// WorkspaceFinder is the slice of the workspace store the resolver needs
// to rebuild a user's context from source of truth. Membership is the
// access criterion: owners are members of their own workspaces, and joined
// workspaces count the same as owned ones.
type WorkspaceFinder interface {
	FindActiveByMember(ctx context.Context, userID string) ([]*Workspace, error)
}

// ContextStore is the key/value store backing the workspace context cache.
type ContextStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type contextService struct {
	store            ContextStore
	workspaces       WorkspaceFinder
	expiration       time.Duration
	refreshThreshold time.Duration
}

func NewContextService(store ContextStore, workspaces WorkspaceFinder, cfg *config.Configuration) ContextService {
	return &contextService{
		store:            store,
		workspaces:       workspaces,
		expiration:       time.Duration(cfg.Cache.ContextExpirationHours) * time.Hour,
		refreshThreshold: time.Duration(cfg.Cache.ContextRefreshThresholdHours) * time.Hour,
	}
}

// ResolveDefaultWorkspace returns the user's default workspace id. On a cache
// miss the full ordered workspace list is rebuilt from the workspace store;
// a user with no active workspaces is a NotFound, not a retryable condition.
func (s *contextService) ResolveDefaultWorkspace(ctx context.Context, userID string) (string, error) {
	ids := s.cachedContext(ctx, userID)
	if len(ids) > 0 {
		return ids[0], nil
	}

	ids, err := s.rebuildContext(ctx, userID)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// ValidateAccess reports whether workspaceID belongs to the user's cached
// (or rebuilt on miss) workspace set. An empty workspaceID is always
// rejected without touching the cache or the store.
func (s *contextService) ValidateAccess(ctx context.Context, userID, workspaceID string) (bool, error) {
	if workspaceID == "" {
		return false, nil
	}

	ids := s.cachedContext(ctx, userID)
	if len(ids) == 0 {
		rebuilt, err := s.rebuildContext(ctx, userID)
		if err != nil {
			if errors.Is(err, models.ErrWorkspaceNotFound) {
				return false, nil
			}
			return false, err
		}
		ids = rebuilt
	}

	for _, id := range ids {
		if id == workspaceID {
			return true, nil
		}
	}
	return false, nil
}

// SetContext overwrites the user's full ordered workspace set and resets the
// TTL. Concurrent writers interleave last-writer-wins; acceptable for an
// optimization layer.
func (s *contextService) SetContext(ctx context.Context, userID string, workspaceIDs []string) error {
	key := contextKeyPrefix + userID
	value := strings.Join(workspaceIDs, ",")

	if err := s.store.SetWithTTL(ctx, key, value, s.expiration); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to set workspace context")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"workspaces": len(workspaceIDs),
	}).Debug("Workspace context set")
	return nil
}

// Invalidate removes all cached context entries for the user. Called when
// membership or ownership changes.
func (s *contextService) Invalidate(ctx context.Context, userID string) error {
	pattern := contextKeyPrefix + userID + "*"

	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to invalidate workspace context")
		return err
	}

	logrus.WithField("user_id", userID).Debug("Workspace context invalidated")
	return nil
}

// cachedContext reads the cached workspace list for the user. A store error
// is treated as a miss so callers fall through to the workspace store
// (fail-open). On a hit the entry's TTL is opportunistically extended.
func (s *contextService) cachedContext(ctx context.Context, userID string) []string {
	key := contextKeyPrefix + userID

	value, err := s.store.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Context cache unavailable, falling back to workspace store")
		return nil
	}
	if value == "" {
		return nil
	}

	s.touch(ctx, key, userID)

	return strings.Split(value, ",")
}

// touch extends an entry's TTL back to the full expiration when it is close
// to expiring. Read and extend are two separate store calls; a concurrent
// Invalidate can race the reset, last writer wins.
func (s *contextService) touch(ctx context.Context, key, userID string) {
	ttl, err := s.store.TTL(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Debug("Failed to read context TTL")
		return
	}

	if ttl > 0 && ttl < s.refreshThreshold {
		logrus.WithField("user_id", userID).Debug("Refreshing expiring workspace context")
		if err := s.store.Expire(ctx, key, s.expiration); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Debug("Failed to refresh context TTL")
		}
	}
}

// rebuildContext repopulates the cache from the workspace store. Only ACTIVE
// workspaces the user is a member of are considered; cache write failures
// are logged but do not fail the resolution.
func (s *contextService) rebuildContext(ctx context.Context, userID string) ([]string, error) {
	workspaces, err := s.workspaces.FindActiveByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(workspaces) == 0 {
		logrus.WithField("user_id", userID).Warn("User has no active workspaces")
		return nil, models.ErrWorkspaceNotFound
	}

	ids := make([]string, len(workspaces))
	for i, w := range workspaces {
		ids[i] = w.ID
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"default":   ids[0],
		"available": len(ids),
	}).Info("Auto-selecting default workspace for user")

	if err := s.SetContext(ctx, userID, ids); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to cache rebuilt workspace context")
	}

	return ids, nil
}

// redisContextStore implements ContextStore over Redis.
type redisContextStore struct {
	client *redis.Client
}

func NewRedisContextStore(client *redis.Client) ContextStore {
	return &redisContextStore{client: client}
}

func (r *redisContextStore) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", models.ErrRedisGet
	}
	return value, nil
}

func (r *redisContextStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return models.ErrRedisSet
	}
	return nil
}

func (r *redisContextStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, models.ErrRedisExpire
	}
	return ttl, nil
}

func (r *redisContextStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return models.ErrRedisExpire
	}
	return nil
}

func (r *redisContextStore) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return models.ErrRedisDelete
		}
	}
	if err := iter.Err(); err != nil {
		return models.ErrRedisDelete
	}
	return nil
}
