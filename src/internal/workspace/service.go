package workspace

import (
	"context"
	"time"
	"workspace-core-svc/src/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const invitationValidity = 7 * 24 * time.Hour

// IdentityLookup resolves user display info from the identity service.
type IdentityLookup interface {
	GetUserByID(ctx context.Context, userID string) (*models.UserInfo, error)
	ValidateUser(ctx context.Context, userID string) (bool, error)
}

// InvitationNotifier publishes invitation emails to the notification queue.
type InvitationNotifier interface {
	SendInvitation(email, workspaceName, inviterName, invitationID string) error
}

type Service interface {
	Create(ctx context.Context, req *CreateRequest, userID string) (*Workspace, error)
	GetByID(ctx context.Context, id, userID string) (*Workspace, error)
	ListByOwner(ctx context.Context, userID string) ([]*Workspace, error)
	Update(ctx context.Context, id string, req *UpdateRequest, userID string) (*Workspace, error)
	PartialUpdate(ctx context.Context, id string, req *PatchRequest, userID string) (*Workspace, error)
	Delete(ctx context.Context, id, userID string) error
	Invite(ctx context.Context, workspaceID string, req *InviteRequest, userID string) (*Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID, userID string) error
	UpdateMemberLastAccess(ctx context.Context, workspaceID, userID string) error
}

type service struct {
	repository     Repository
	contextService ContextService
	identityClient IdentityLookup
	emailClient    InvitationNotifier
}

func NewService(repository Repository, contextService ContextService,
	identityClient IdentityLookup, emailClient InvitationNotifier) Service {
	return &service{
		repository:     repository,
		contextService: contextService,
		identityClient: identityClient,
		emailClient:    emailClient,
	}
}

func (s *service) Create(ctx context.Context, req *CreateRequest, userID string) (*Workspace, error) {
	exists, err := s.repository.ExistsByNameAndOwner(ctx, req.Name, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrWorkspaceDuplicated
	}

	now := time.Now()
	workspace := &Workspace{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
		LogoURL:     req.LogoURL,
		Status:      StatusActive,
		Members: []Member{{
			UserID:   userID,
			Role:     RoleOwner,
			JoinedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.Insert(ctx, workspace); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"workspace_id": workspace.ID,
		"owner_id":     userID,
	}).Info("Workspace created")

	// A new workspace changes the owner's accessible set
	s.refreshOwnerContext(ctx, userID)

	return workspace, nil
}

func (s *service) GetByID(ctx context.Context, id, userID string) (*Workspace, error) {
	workspace, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workspace.IsActive() {
		return nil, models.ErrWorkspaceNotFound
	}
	if !workspace.HasMember(userID) {
		return nil, models.ErrWorkspaceNotFound
	}
	return workspace, nil
}

// ListByOwner enumerates the user's active workspaces and refreshes the
// context cache with the full ordered set as a side effect.
func (s *service) ListByOwner(ctx context.Context, userID string) ([]*Workspace, error) {
	workspaces, err := s.repository.FindActiveByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(workspaces) > 0 {
		ids := make([]string, len(workspaces))
		for i, w := range workspaces {
			ids[i] = w.ID
		}
		if err := s.contextService.SetContext(ctx, userID, ids); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to refresh workspace context")
		}
	}

	return workspaces, nil
}

func (s *service) Update(ctx context.Context, id string, req *UpdateRequest, userID string) (*Workspace, error) {
	workspace, err := s.repository.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	workspace.Name = req.Name
	workspace.Description = req.Description
	workspace.LogoURL = req.LogoURL

	if err := s.repository.Update(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *service) PartialUpdate(ctx context.Context, id string, req *PatchRequest, userID string) (*Workspace, error) {
	workspace, err := s.repository.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		workspace.Name = *req.Name
	}
	if req.Description != nil {
		workspace.Description = *req.Description
	}
	if req.LogoURL != nil {
		workspace.LogoURL = *req.LogoURL
	}

	if err := s.repository.Update(ctx, workspace); err != nil {
		return nil, err
	}
	return workspace, nil
}

// Delete soft-deletes the workspace and invalidates every member's cached
// context, since their accessible sets all changed.
func (s *service) Delete(ctx context.Context, id, userID string) error {
	workspace, err := s.repository.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	workspace.Status = StatusDeleted
	workspace.DeletedAt = &now

	if err := s.repository.Update(ctx, workspace); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"workspace_id": id,
		"owner_id":     userID,
	}).Info("Workspace deleted")

	for _, member := range workspace.Members {
		if err := s.contextService.Invalidate(ctx, member.UserID); err != nil {
			logrus.WithError(err).WithField("user_id", member.UserID).Warn("Failed to invalidate member context")
		}
	}

	return nil
}

func (s *service) Invite(ctx context.Context, workspaceID string, req *InviteRequest, userID string) (*Invitation, error) {
	workspace, err := s.repository.FindByIDAndOwner(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invitation := &Invitation{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Email:       req.Email,
		InvitedBy:   userID,
		Status:      InvitationPending,
		ExpiresAt:   now.Add(invitationValidity),
		CreatedAt:   now,
	}

	if err := s.repository.InsertInvitation(ctx, invitation); err != nil {
		return nil, err
	}

	inviterName := userID
	if inviter, err := s.identityClient.GetUserByID(ctx, userID); err == nil {
		inviterName = inviter.DisplayName()
	}

	if err := s.emailClient.SendInvitation(req.Email, workspace.Name, inviterName, invitation.ID); err != nil {
		logrus.WithError(err).WithField("invitation_id", invitation.ID).Warn("Failed to publish invitation email")
	}

	logrus.WithFields(logrus.Fields{
		"workspace_id":  workspaceID,
		"invitation_id": invitation.ID,
		"email":         req.Email,
	}).Info("Workspace invitation created")

	return invitation, nil
}

func (s *service) AcceptInvitation(ctx context.Context, invitationID, userID string) error {
	invitation, err := s.repository.FindInvitationByID(ctx, invitationID)
	if err != nil {
		return err
	}

	if invitation.Status != InvitationPending {
		return models.ErrInvitationNotFound
	}
	if time.Now().After(invitation.ExpiresAt) {
		return models.ErrInvitationExpired
	}

	workspace, err := s.repository.FindByID(ctx, invitation.WorkspaceID)
	if err != nil {
		return err
	}
	if workspace.HasMember(userID) {
		return models.ErrMemberDuplicated
	}

	// Membership grants fail closed: the accepting account must exist and
	// be enabled before it is added to the workspace.
	enabled, err := s.identityClient.ValidateUser(ctx, userID)
	if err != nil {
		return err
	}
	if !enabled {
		return models.ErrUserNotFound
	}

	member := Member{
		UserID:   userID,
		Role:     RoleMember,
		JoinedAt: time.Now(),
	}
	if err := s.repository.AddMember(ctx, invitation.WorkspaceID, member); err != nil {
		return err
	}

	if err := s.repository.UpdateInvitationStatus(ctx, invitationID, InvitationAccepted); err != nil {
		return err
	}

	// Membership changed: the invitee's cached context is now stale
	if err := s.contextService.Invalidate(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate invitee context")
	}

	logrus.WithFields(logrus.Fields{
		"workspace_id":  invitation.WorkspaceID,
		"invitation_id": invitationID,
		"user_id":       userID,
	}).Info("Workspace invitation accepted")

	return nil
}

func (s *service) UpdateMemberLastAccess(ctx context.Context, workspaceID, userID string) error {
	return s.repository.UpdateMemberLastAccess(ctx, workspaceID, userID)
}

func (s *service) refreshOwnerContext(ctx context.Context, userID string) {
	workspaces, err := s.repository.FindActiveByOwner(ctx, userID)
	if err != nil || len(workspaces) == 0 {
		return
	}
	ids := make([]string, len(workspaces))
	for i, w := range workspaces {
		ids[i] = w.ID
	}
	if err := s.contextService.SetContext(ctx, userID, ids); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to refresh workspace context")
	}
}
