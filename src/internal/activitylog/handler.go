package activitylog

import (
	"context"
	"net/http"
	"strconv"
	"time"
	"workspace-core-svc/src/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Search(c *gin.Context)
	Count(c *gin.Context)
	Types(c *gin.Context)
}

type handler struct {
	config  *config.Configuration
	service Service
}

func NewHandler(cfg *config.Configuration, service Service) Handler {
	return &handler{
		config:  cfg,
		service: service,
	}
}

func (h *handler) Search(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	req := h.parseSearchRequest(c)

	logrus.WithFields(logrus.Fields{
		"workspace_id":  req.WorkspaceID,
		"project_id":    req.ProjectID,
		"activity_type": req.ActivityType,
		"page":          req.Page,
		"size":          req.Size,
	}).Info("Activity log search request received")

	page, err := h.service.Search(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to search activity logs")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve activity logs",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
		"message": "Activity logs retrieved successfully",
	})
}

func (h *handler) Count(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	req := h.parseSearchRequest(c)

	count, err := h.service.Count(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to count activity logs")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count activity logs",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"count": count},
		"message": "Activity log count retrieved successfully",
	})
}

func (h *handler) Types(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    Descriptions(),
		"message": "Activity types retrieved successfully",
	})
}

// parseSearchRequest maps query parameters onto the filter. The workspace id
// always comes from the authenticated context set by the middleware, never
// from a query parameter.
func (h *handler) parseSearchRequest(c *gin.Context) *SearchRequest {
	req := &SearchRequest{
		WorkspaceID:   c.GetString("workspace_id"),
		ProjectID:     c.Query("projectId"),
		ApplicationID: c.Query("applicationId"),
		ActivityType:  c.Query("activityType"),
		CreatedBy:     c.Query("createdBy"),
		RoleID:        c.Query("roleId"),
		Page:          parseIntParam(c, "page", 1),
		Size:          parseIntParam(c, "size", 20),
		SortField:     c.Query("sortField"),
		SortDirection: c.Query("sortDirection"),
	}

	if startTime := parseTimeParam(c, "startTime"); startTime != nil {
		req.StartTime = startTime
	}
	if endTime := parseTimeParam(c, "endTime"); endTime != nil {
		req.EndTime = endTime
	}

	return req
}

func parseIntParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"param": param,
			"value": value,
			"error": err,
		}).Warn("Invalid integer parameter, using default")
		return defaultValue
	}
	return parsed
}

func parseTimeParam(c *gin.Context, param string) *time.Time {
	value := c.Query(param)
	if value == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"param": param,
			"value": value,
		}).Warn("Invalid time parameter, ignoring")
		return nil
	}
	return &parsed
}
