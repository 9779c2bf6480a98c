package middleware

import (
	"errors"
	"net/http"
	"strings"
	"workspace-core-svc/src/internal/models"
	"workspace-core-svc/src/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

const workspaceHeader = "X-Workspace-Id"

// AuthMiddleware handles authentication and workspace scoping
type AuthMiddleware struct {
	jwtSecret      string
	contextService workspace.ContextService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtSecret string, contextService workspace.ContextService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:      jwtSecret,
		contextService: contextService,
	}
}

// RequireAuth validates the JWT token and stores user info in the context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			c.Abort()
			return
		}

		claims, err := m.validateJWTToken(token)
		if err != nil {
			logrus.WithError(err).Error("JWT token validation failed")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)

		logrus.WithField("user_id", claims.UserID).Debug("User authenticated successfully")

		c.Next()
	}
}

// RequireWorkspace resolves the caller's workspace scope and gates the
// request on it. An explicit X-Workspace-Id header is validated against the
// user's accessible set; without the header the default workspace is
// resolved from the context cache.
func (m *AuthMiddleware) RequireWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			logrus.Error("User id not found in context - ensure RequireAuth middleware runs first")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		workspaceID := c.GetHeader(workspaceHeader)
		if workspaceID != "" {
			allowed, err := m.contextService.ValidateAccess(c.Request.Context(), userID, workspaceID)
			if err != nil {
				logrus.WithError(err).WithField("user_id", userID).Error("Workspace access validation failed")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Workspace validation error",
				})
				c.Abort()
				return
			}
			if !allowed {
				logrus.WithFields(logrus.Fields{
					"user_id":      userID,
					"workspace_id": workspaceID,
				}).Warn("User attempted to access workspace outside their context")
				c.JSON(http.StatusForbidden, gin.H{
					"error": "Access forbidden - workspace not accessible",
				})
				c.Abort()
				return
			}
		} else {
			resolved, err := m.contextService.ResolveDefaultWorkspace(c.Request.Context(), userID)
			if err != nil {
				if errors.Is(err, models.ErrWorkspaceNotFound) {
					c.JSON(http.StatusForbidden, gin.H{
						"error": "No workspace chosen",
					})
				} else {
					logrus.WithError(err).WithField("user_id", userID).Error("Failed to resolve default workspace")
					c.JSON(http.StatusInternalServerError, gin.H{
						"error": "Workspace resolution error",
					})
				}
				c.Abort()
				return
			}
			workspaceID = resolved
		}

		c.Set("workspace_id", workspaceID)

		logrus.WithFields(logrus.Fields{
			"user_id":      userID,
			"workspace_id": workspaceID,
		}).Debug("Workspace scope resolved")

		c.Next()
	}
}

// extractToken extracts JWT token from Authorization header
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		logrus.Error("Authorization header missing")
		return ""
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		logrus.Error("Invalid authorization header format")
		return ""
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		logrus.Error("Empty token")
		return ""
	}

	return token
}

// validateJWTToken parses and validates JWT token (checks signature and expiration)
func (m *AuthMiddleware) validateJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token expired")
		}
		return nil, errors.New("invalid token")
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	if claims.TokenType != "access" {
		return nil, errors.New("invalid token type")
	}

	return claims, nil
}
