package auth

import (
	"context"
	"net/http"
	"strings"

	"translation-market/internal/models"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// ActorLoader resolves a user id to its stored record. The middleware
// uses it so every request carries an explicit, server-verified actor
// instead of a client-asserted role.
type ActorLoader interface {
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

// AuthMiddleware validates JWT tokens, loads the actor and protects routes
func AuthMiddleware(loader ActorLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Expected: Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		actor, err := loader.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// GetActor retrieves the authenticated actor from the context
func GetActor(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return nil, false
	}
	actor, ok := value.(*models.User)
	return actor, ok
}
