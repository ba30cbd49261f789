package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myceliumAI/polypore/internal/pkg/jwt"
	"github.com/myceliumAI/polypore/internal/pkg/response"
)

// Context keys set by JWTAuth.
const (
	ContextOperator = "operator"
	ContextRole     = "role"
)

// JWTAuth requires "Authorization: Bearer <token>" and stores the operator and role in
// the request context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextOperator, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
