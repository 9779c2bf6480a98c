package activitylog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

const countDefaultWindow = 24 * time.Hour

// IdentityLookup is the slice of the identity service the query engine
// needs for actor enrichment.
type IdentityLookup interface {
	GetUserByID(ctx context.Context, userID string) (*models.UserInfo, error)
}

type Service interface {
	Search(ctx context.Context, req *SearchRequest) (*Page, error)
	Count(ctx context.Context, req *SearchRequest) (int64, error)
}

type service struct {
	repository Repository
	identity   IdentityLookup
	cfg        *config.Configuration
}

func NewService(repository Repository, identity IdentityLookup, cfg *config.Configuration) Service {
	return &service{
		repository: repository,
		identity:   identity,
		cfg:        cfg,
	}
}

// Search returns a page of enriched activity log views. Enrichment is best
// effort: an unreachable identity service degrades the actor to a
// placeholder, never the query to an error.
func (s *service) Search(ctx context.Context, req *SearchRequest) (*Page, error) {
	s.normalize(req)

	logs, totalCount, err := s.repository.Search(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to search activity logs")
		return nil, err
	}

	users := s.resolveActors(ctx, logs)

	items := make([]*Response, len(logs))
	for i, entry := range logs {
		items[i] = s.toResponse(entry, users[entry.CreatedBy])
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(req.Size)))

	logrus.WithFields(logrus.Fields{
		"workspace_id": req.WorkspaceID,
		"count":        len(items),
		"total":        totalCount,
	}).Debug("Activity log search completed")

	return &Page{
		Items:      items,
		TotalCount: totalCount,
		Page:       req.Page,
		Size:       req.Size,
		TotalPages: totalPages,
	}, nil
}

// Count returns the number of logs matching the predicate. The time window
// defaults to the last 24 hours when unspecified; an unparseable activity
// type filter is dropped with a warning instead of failing the query.
func (s *service) Count(ctx context.Context, req *SearchRequest) (int64, error) {
	s.normalize(req)

	if req.StartTime == nil && req.EndTime == nil {
		now := time.Now()
		start := now.Add(-countDefaultWindow)
		req.StartTime = &start
		req.EndTime = &now
	}

	return s.repository.Count(ctx, req)
}

func (s *service) normalize(req *SearchRequest) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 {
		req.Size = s.cfg.Search.MinQueryLimit
	}
	if req.Size > s.cfg.Search.MaxQueryLimit {
		req.Size = s.cfg.Search.MaxQueryLimit
	}

	if req.ActivityType != "" {
		if _, err := ParseActivityType(req.ActivityType); err != nil {
			logrus.WithField("activity_type", req.ActivityType).Warn("Ignoring invalid activity type filter")
			req.ActivityType = ""
		}
	}
}

// resolveActors looks up each distinct actor once per page. Failures fall
// back to a placeholder identity.
func (s *service) resolveActors(ctx context.Context, logs []*ActivityLog) map[string]UserInfoView {
	users := make(map[string]UserInfoView)

	for _, entry := range logs {
		if _, ok := users[entry.CreatedBy]; ok {
			continue
		}

		user, err := s.identity.GetUserByID(ctx, entry.CreatedBy)
		if err != nil {
			logrus.WithError(err).WithField("user_id", entry.CreatedBy).Warn("Failed to resolve actor identity")
			users[entry.CreatedBy] = UserInfoView{
				ID:   entry.CreatedBy,
				Name: "Unknown User",
			}
			continue
		}

		users[entry.CreatedBy] = UserInfoView{
			ID:      user.ID,
			Name:    user.DisplayName(),
			Picture: user.Picture,
		}
	}

	return users
}

func (s *service) toResponse(entry *ActivityLog, user UserInfoView) *Response {
	return &Response{
		ID:            entry.ID,
		ActivityType:  entry.ActivityType,
		Description:   renderDescription(entry.Description, entry.Variables, user.Name),
		WorkspaceID:   entry.WorkspaceID,
		ProjectID:     entry.ProjectID,
		ApplicationID: entry.ApplicationID,
		CreatedBy:     entry.CreatedBy,
		Variables:     entry.Variables,
		Attachments:   entry.Attachments,
		CreatedAt:     entry.CreatedAt,
		UserInfo:      user,
	}
}

// renderDescription substitutes every {key} token in the template with the
// matching variable. The resolved actor name is injected under the "user"
// key; tokens with no matching variable are left verbatim.
func renderDescription(template string, variables map[string]interface{}, userName string) string {
	rendered := template

	if userName != "" {
		rendered = strings.ReplaceAll(rendered, "{user}", userName)
	}

	for key, value := range variables {
		rendered = strings.ReplaceAll(rendered, "{"+key+"}", formatVariable(value))
	}

	return rendered
}

func formatVariable(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
