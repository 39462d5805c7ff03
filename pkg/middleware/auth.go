package middleware

import (
	"errors"
	"net/http"
	"strings"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthJWT validates the Bearer token issued by the identity system and puts
// the authenticated principal (user id + role) on the request context.
func AuthJWT(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			userID, role, err := parseToken(parts[1], secret)
			if err != nil {
				logger.Warn("Invalid token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects requests whose principal role is not one of the
// allowed roles. Must run after AuthJWT.
func RequireRoles(logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			for _, allowed := range roles {
				if entity.UserRole(role) == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Role check failed",
				zap.String("role", role),
				zap.String("path", r.URL.Path),
			)
			utils.ResponseForbidden(w, "Access denied")
		})
	}
}

func parseToken(tokenStr, secret string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "", errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, "", errors.New("missing sub claim")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", errors.New("invalid sub claim")
	}

	role, ok := claims["role"].(string)
	if !ok || !entity.ValidRole(role) {
		return uuid.Nil, "", errors.New("missing or unknown role claim")
	}

	return userID, role, nil
}
