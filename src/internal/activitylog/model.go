package activitylog

import (
	"time"
	"workspace-core-svc/src/internal/models"
)

// ActivityLog is the persisted audit record. Rows are written in batches by
// the consumer and never mutated afterwards; workspaceId is always resolved
// before the write and is never empty on a persisted row.
type ActivityLog struct {
	ID            string                 `json:"id" bson:"_id"`
	ActivityType  ActivityType           `json:"activityType" bson:"activity_type"`
	Description   string                 `json:"description" bson:"description"`
	WorkspaceID   string                 `json:"workspaceId" bson:"workspace_id"`
	ProjectID     string                 `json:"projectId,omitempty" bson:"project_id,omitempty"`
	ApplicationID string                 `json:"applicationId,omitempty" bson:"application_id,omitempty"`
	CreatedBy     string                 `json:"createdBy" bson:"created_by"`
	Variables     map[string]interface{} `json:"variables,omitempty" bson:"variables,omitempty"`
	Attachments   map[string]interface{} `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt     time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time              `json:"updatedAt" bson:"updated_at"`
}

// SearchRequest is the filter surface for activity log queries. All fields
// are optional and AND-combined; WorkspaceID is always set from the caller's
// authenticated context, never from request input.
type SearchRequest struct {
	WorkspaceID   string
	ProjectID     string
	ApplicationID string
	ActivityType  string
	CreatedBy     string
	RoleID        string
	StartTime     *time.Time
	EndTime       *time.Time
	Page          int
	Size          int
	SortField     string
	SortDirection string
}

type UserInfoView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type Response struct {
	ID            string                 `json:"id"`
	ActivityType  ActivityType           `json:"activityType"`
	Description   string                 `json:"description"`
	WorkspaceID   string                 `json:"workspaceId"`
	ProjectID     string                 `json:"projectId,omitempty"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	CreatedBy     string                 `json:"createdBy"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Attachments   map[string]interface{} `json:"attachments,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UserInfo      UserInfoView           `json:"userInfo"`
}

type Page struct {
	Items      []*Response `json:"items"`
	TotalCount int64       `json:"totalCount"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	TotalPages int         `json:"totalPages"`
}

// BatchResult summarizes one consumer tick so the polling loop can report
// counts even though failures are only logged.
type BatchResult struct {
	Received  int
	Persisted int
	Err       error
}

// FromMessage maps a queue message to a persistable row. The workspace id
// must already be resolved by the caller.
func FromMessage(message *models.ActivityLogMessage, activityType ActivityType, workspaceID, id string) *ActivityLog {
	now := time.Now()
	createdAt := message.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return &ActivityLog{
		ID:            id,
		ActivityType:  activityType,
		Description:   activityType.Template(),
		WorkspaceID:   workspaceID,
		ProjectID:     message.ProjectID,
		ApplicationID: message.ApplicationID,
		CreatedBy:     message.CreatedBy,
		Variables:     message.Variables,
		Attachments:   message.Attachments,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
}
