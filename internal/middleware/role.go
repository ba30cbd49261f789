package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myceliumAI/polypore/internal/pkg/jwt"
	"github.com/myceliumAI/polypore/internal/pkg/response"
)

// RequireRole ensures that the authenticated caller has the specified role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Role not found in token")
			return
		}

		if role != requiredRole {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

func OperatorOnly() gin.HandlerFunc {
	return RequireRole(jwt.RoleOperator)
}
