package models

import "time"

// ActivityLogMessage is the wire envelope other services push onto the
// activity_log_queue. The consumer never mutates it.
type ActivityLogMessage struct {
	ActivityType  string                 `json:"activityType"`
	WorkspaceID   string                 `json:"workspaceId,omitempty"`
	ProjectID     string                 `json:"projectId,omitempty"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	CreatedBy     string                 `json:"createdBy"`
	CreatedAt     time.Time              `json:"createdAt"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Attachments   map[string]interface{} `json:"attachments,omitempty"`
}

// EmailMessage is published to the email notification queue when a
// workspace invitation is created. The email service owns delivery.
type EmailMessage struct {
	To        string            `json:"to"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// UserInfo is the identity service's view of a user, used for
// activity log enrichment.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Picture   string `json:"picture,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// DisplayName joins first and last name, falling back to email.
func (u *UserInfo) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}
