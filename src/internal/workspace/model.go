package workspace

import "time"

// Status constants
const (
	StatusActive  = "ACTIVE"
	StatusDeleted = "DELETED"
)

// Member role constants
const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

// Invitation status constants
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationExpired  = "EXPIRED"
)

type Workspace struct {
	ID          string     `json:"id" bson:"_id"`
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	OwnerID     string     `json:"ownerId" bson:"owner_id"`
	LogoURL     string     `json:"logoUrl,omitempty" bson:"logo_url,omitempty"`
	Status      string     `json:"status" bson:"status"`
	Members     []Member   `json:"members" bson:"members"`
	CreatedAt   time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updated_at"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty" bson:"deleted_at,omitempty"`
}

type Member struct {
	UserID         string     `json:"userId" bson:"user_id"`
	Role           string     `json:"role" bson:"role"`
	JoinedAt       time.Time  `json:"joinedAt" bson:"joined_at"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty" bson:"last_accessed_at,omitempty"`
}

type Invitation struct {
	ID          string    `json:"id" bson:"_id"`
	WorkspaceID string    `json:"workspaceId" bson:"workspace_id"`
	Email       string    `json:"email" bson:"email"`
	InvitedBy   string    `json:"invitedBy" bson:"invited_by"`
	Status      string    `json:"status" bson:"status"`
	ExpiresAt   time.Time `json:"expiresAt" bson:"expires_at"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// IsActive checks if the workspace has not been soft-deleted
func (w *Workspace) IsActive() bool {
	return w.Status == StatusActive
}

// HasMember checks whether userID belongs to the workspace
func (w *Workspace) HasMember(userID string) bool {
	for _, m := range w.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

type UpdateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

// PatchRequest carries optional fields; nil means "leave unchanged"
type PatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	Status      string    `json:"status"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToResponse converts a Workspace to its API representation
func (w *Workspace) ToResponse() *Response {
	return &Response{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		OwnerID:     w.OwnerID,
		LogoURL:     w.LogoURL,
		Status:      w.Status,
		MemberCount: len(w.Members),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
