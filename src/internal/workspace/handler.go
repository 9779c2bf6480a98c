package workspace

import (
	"context"
	"errors"
	"net/http"
	"time"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Update(c *gin.Context)
	Patch(c *gin.Context)
	Delete(c *gin.Context)
	Invite(c *gin.Context)
	AcceptInvitation(c *gin.Context)
	UpdateMemberAccess(c *gin.Context)
	DefaultWorkspace(c *gin.Context)
}

type handler struct {
	config   *config.Configuration
	service  Service
	contexts ContextService
}

func NewHandler(cfg *config.Configuration, service Service, contexts ContextService) Handler {
	return &handler{
		config:   cfg,
		service:  service,
		contexts: contexts,
	}
}

func (h *handler) Create(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	userID := c.GetString("user_id")
	workspace, err := h.service.Create(ctx, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    workspace.ToResponse(),
		"message": "Workspace created successfully",
	})
}

func (h *handler) Get(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetString("user_id")
	workspace, err := h.service.GetByID(ctx, c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    workspace.ToResponse(),
		"message": "Workspace retrieved successfully",
	})
}

func (h *handler) List(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetString("user_id")
	workspaces, err := h.service.ListByOwner(ctx, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	responses := make([]*Response, len(workspaces))
	for i, workspace := range workspaces {
		responses[i] = workspace.ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
		"message": "Workspaces retrieved successfully",
	})
}

func (h *handler) Update(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	userID := c.GetString("user_id")
	workspace, err := h.service.Update(ctx, c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    workspace.ToResponse(),
		"message": "Workspace updated successfully",
	})
}

func (h *handler) Patch(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	userID := c.GetString("user_id")
	workspace, err := h.service.PartialUpdate(ctx, c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    workspace.ToResponse(),
		"message": "Workspace updated successfully",
	})
}

func (h *handler) Delete(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetString("user_id")
	if err := h.service.Delete(ctx, c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Workspace deleted successfully",
	})
}

func (h *handler) Invite(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	userID := c.GetString("user_id")
	invitation, err := h.service.Invite(ctx, c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    invitation,
		"message": "Invitation sent successfully",
	})
}

func (h *handler) AcceptInvitation(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetString("user_id")
	if err := h.service.AcceptInvitation(ctx, c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Invitation accepted successfully",
	})
}

// UpdateMemberAccess stamps the caller's last access time on the workspace
// membership record.
func (h *handler) UpdateMemberAccess(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID := c.GetString("user_id")
	if err := h.service.UpdateMemberLastAccess(ctx, c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Member access updated successfully",
	})
}

// DefaultWorkspace resolves the default workspace for a member through the
// context cache.
func (h *handler) DefaultWorkspace(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	workspaceID, err := h.contexts.ResolveDefaultWorkspace(ctx, c.Param("userId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"workspaceId": workspaceID},
		"message": "Default workspace resolved successfully",
	})
}

func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) handleServiceError(c *gin.Context, err error) {
	logrus.WithError(err).Error("Workspace request failed")

	switch {
	case errors.Is(err, models.ErrWorkspaceNotFound), errors.Is(err, models.ErrInvitationNotFound),
		errors.Is(err, models.ErrMemberNotFound), errors.Is(err, models.ErrUserNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, models.ErrWorkspaceDuplicated), errors.Is(err, models.ErrMemberDuplicated):
		h.sendErrorResponse(c, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, models.ErrInvitationExpired):
		h.sendErrorResponse(c, http.StatusGone, "Invitation expired", err.Error())
	case errors.Is(err, models.ErrDatabaseQuery), errors.Is(err, models.ErrDatabaseInsert),
		errors.Is(err, models.ErrDatabaseUpdate), errors.Is(err, models.ErrRedisSet),
		errors.Is(err, models.ErrRedisDelete):
		h.sendErrorResponse(c, http.StatusServiceUnavailable, "Service unavailable", models.ErrServiceUnavailable.Error())
	default:
		h.sendErrorResponse(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   error,
		"message": message,
	})
}
