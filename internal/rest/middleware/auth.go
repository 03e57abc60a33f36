package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/vastahq/vasta/internal/config"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/types"
)

// AuthenticateMiddleware validates the session token issued by the auth
// service (HS256 JWT in the Authorization header as a Bearer token) and sets
// the account ID in the request context for downstream handlers.
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		accountID, err := validateToken(cfg, tokenString)
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.CtxAccountID, accountID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func validateToken(cfg *config.Configuration, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint("Invalid token").
				Mark(ierr.ErrPermissionDenied)
		}
		return []byte(cfg.Auth.Secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ierr.NewError("invalid token claims").
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	accountID, _ := claims["sub"].(string)
	if accountID == "" {
		return "", ierr.NewError("token missing subject").
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	return accountID, nil
}
