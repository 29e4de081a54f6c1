package middleware

import (
	"errors"
	"strings"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"
	"procserv_training_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthMiddleware validates the bearer token and resolves its subject
// against the user store. Tokens whose subject no longer exists are
// rejected the same way invalid tokens are.
func AuthMiddleware(userRepo *repository.UserRepository, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = util.ErrUserNotFound
			}
			logger.Log.Debug("token subject rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !user.IsActive {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// RoleMiddleware gates a route group on the authenticated user's role.
func RoleMiddleware(role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil || user.Role != role {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
