package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/utils"
)

const (
	// ContextSessionKey stores the authenticated SessionRecord in Gin context.
	ContextSessionKey = "session"
	// ContextTokenKey stores the raw bearer token for logout revocation.
	ContextTokenKey = "token"
)

// AuthRequired ensures the request carries a valid, non-revoked JWT and puts
// the decoded session into the context.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextSessionKey, claims.Session())
		ctx.Set(ContextTokenKey, tokenString)
		ctx.Next()
	}
}

// RequireRole gates a route group by role. An empty allowed set means any
// authenticated role. A signed-in actor with the wrong role gets 403 plus a
// redirect hint to their own dashboard, mirroring how the web client routes
// wrong-role visitors to the dashboard they do own.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sess, ok := GetSession(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "not authenticated")
			ctx.Abort()
			return
		}
		if len(allowed) == 0 {
			ctx.Next()
			return
		}
		for _, role := range allowed {
			if sess.Type == role {
				ctx.Next()
				return
			}
		}
		utils.ErrorData(ctx, http.StatusForbidden, 40301, "role not permitted",
			gin.H{"redirect": DashboardPath(sess.Type)})
		ctx.Abort()
	}
}

// GetSession returns the authenticated session from the context.
func GetSession(ctx *gin.Context) (models.SessionRecord, bool) {
	v, ok := ctx.Get(ContextSessionKey)
	if !ok {
		return models.SessionRecord{}, false
	}
	sess, ok := v.(models.SessionRecord)
	return sess, ok
}

// DashboardPath maps a role to its dashboard location.
func DashboardPath(role string) string {
	switch role {
	case models.RoleFarmer:
		return "/farmer-dashboard"
	case models.RoleExpert:
		return "/expert-dashboard"
	default:
		return "/"
	}
}
