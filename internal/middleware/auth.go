package middleware

import (
	"strings"
	"wartungsmanager/auth"
	"wartungsmanager/internal/errors"

	"github.com/gin-gonic/gin"
)

const (
	ContextTenantID = "tenant_id"
	ContextUserID   = "user_id"
	ContextClaims   = "claims"
)

type Auth struct {
	JWTSecret      []byte
	InternalSecret string
}

func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.VerifyJWT(m.JWTSecret, token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		ctx.Set(ContextTenantID, claims.TenantID)
		ctx.Set(ContextUserID, claims.UserID)
		ctx.Set(ContextClaims, claims)
		ctx.Next()
	}
}

// RequireRole must run after AuthMiddleWare
func (m *Auth) RequireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, ok := ctx.Get(ContextClaims)
		claims, _ := value.(*auth.Claims)
		if !ok || claims == nil {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		if !claims.HasAnyRole(roles...) {
			ctx.Error(errors.Forbidden("Missing permission!", nil))
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func (m *Auth) InternalAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimPrefix(
			ctx.GetHeader("Authorization"),
			"Bearer ",
		)

		if token != m.InternalSecret {
			ctx.Error(errors.Unauthorized("Unauthorized internal call!", nil))
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

// TenantID returns the tenant stamped by AuthMiddleWare
func TenantID(ctx *gin.Context) string {
	return ctx.GetString(ContextTenantID)
}
