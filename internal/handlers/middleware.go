package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	uuid2 "github.com/google/uuid"

	"github.com/SAP-F-2025/evalmate-service/internal/models"
	"github.com/SAP-F-2025/evalmate-service/internal/utils"
	"github.com/SAP-F-2025/evalmate-service/internal/validator"
)

// Identity headers set by the fronting gateway
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"

	identityKey = "identity"
)

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger) {
	// Request ID middleware
	router.Use(RequestIDMiddleware())

	// CORS middleware
	router.Use(CORSMiddleware())

	// Recovery middleware
	router.Use(gin.Recovery())

	// Context logger middleware (adds logger with request_id to context)
	router.Use(utils.ContextLogger(logger))

	// Custom logging middleware
	router.Use(utils.LoggerMiddleware(logger))

	// Security headers middleware
	router.Use(SecurityMiddleware())
}

// IdentityMiddleware reads the caller from the gateway headers. Requests
// without a valid role are rejected.
func IdentityMiddleware(v *validator.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := validator.IdentityRequest{
			ID:   strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Name: strings.TrimSpace(c.GetHeader(HeaderUserName)),
			Role: strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))),
		}
		if errs := v.ValidateStruct(&req); len(errs) > 0 {
			respondError(c, http.StatusUnauthorized, "Missing or invalid identity headers", errs)
			c.Abort()
			return
		}

		identity := models.Identity{ID: req.ID, Name: req.Name, Role: models.UserRole(req.Role)}
		c.Set(identityKey, identity)
		c.Set("user_id", identity.ID)
		c.Set("user_role", identity.Role)
		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetIdentityFromContext(c)
		if err != nil {
			respondError(c, http.StatusForbidden, "user role not found in context", nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		respondError(c, http.StatusForbidden, fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles), nil)
		c.Abort()
	}
}

// GetIdentityFromContext extracts the caller from Gin context
func GetIdentityFromContext(c *gin.Context) (models.Identity, error) {
	value, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, fmt.Errorf("identity not found in context")
	}

	identity, ok := value.(models.Identity)
	if !ok {
		return models.Identity{}, fmt.Errorf("invalid identity type in context")
	}

	return identity, nil
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid2.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware provides CORS support
func CORSMiddleware() gin.HandlerFunc {
	allowHeaders := strings.Join([]string{
		"Content-Type", "Authorization", "X-Request-ID",
		HeaderUserID, HeaderUserName, HeaderUserRole,
	}, ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		c.Header("Access-Control-Max-Age", "43200")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
