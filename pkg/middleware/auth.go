package middleware

import (
	"net/http"
	"slices"
	"strings"

	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/pkg/token"
	"starter-api/pkg/utils"

	"go.uber.org/zap"
)

// Authenticate validates a Bearer access token and loads its user. Archived
// users are rejected with 403.
func Authenticate(issuer *token.Issuer, users repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			// 2. Verify
			claims, err := issuer.Parse(strings.TrimSpace(raw), token.ContextAccess)
			if err != nil {
				logger.Warn("Invalid access token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Could not validate credentials")
				return
			}

			userID, err := claims.UserUUID()
			if err != nil {
				utils.ResponseUnauthorized(w, "Could not validate credentials")
				return
			}

			// 3. Load user
			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Failed to load user for token",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil {
				utils.ResponseUnauthorized(w, "User not found")
				return
			}
			if user.Archived {
				utils.ResponseForbidden(w, "Inactive user")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, string(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !slices.Contains(roles, entity.UserRole(role)) {
				userID, _ := utils.GetUserIDFromContext(r.Context())
				logger.Warn("Role check failed",
					zap.String("user_id", userID.String()),
					zap.String("role", role),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "The user doesn't have enough privileges")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
