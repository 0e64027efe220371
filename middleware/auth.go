package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"academic-records/auth"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
}

func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// AuthMiddleware проверяет JWT токен и кладёт принципала в контекст
func (am *AuthMiddleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicRoute(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Printf("❌ No authorization header for %s %s", r.Method, r.URL.Path)
			http.Error(w, `{"error": "Authorization header required"}`, http.StatusUnauthorized)
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			log.Printf("❌ Invalid authorization format for %s %s", r.Method, r.URL.Path)
			http.Error(w, `{"error": "Invalid authorization format"}`, http.StatusUnauthorized)
			return
		}

		claims, err := am.jwtService.ValidateToken(bearerToken[1])
		if err != nil {
			log.Printf("❌ Invalid token for %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		principal, err := auth.PrincipalFromClaims(claims)
		if err != nil {
			log.Printf("❌ Rejected token for %s: %v", claims.Login, err)
			http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := SetUserClaims(r.Context(), claims)
		ctx = context.WithValue(ctx, principalKey, principal)

		log.Printf("✅ Authenticated user %s (role: %s) for %s %s",
			claims.Login, claims.Role, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Вспомогательные функции для работы с контекстом
type contextKey string

const (
	userClaimsKey contextKey = "userClaims"
	principalKey  contextKey = "principal"
)

// SetUserClaims добавляет claims пользователя в контекст
func SetUserClaims(ctx context.Context, claims *auth.JWTClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims извлекает claims пользователя из контекста
func GetUserClaims(ctx context.Context) *auth.JWTClaims {
	if claims, ok := ctx.Value(userClaimsKey).(*auth.JWTClaims); ok {
		return claims
	}
	return nil
}

// GetPrincipal возвращает текущего пользователя или nil
func GetPrincipal(ctx context.Context) auth.Principal {
	if p, ok := ctx.Value(principalKey).(auth.Principal); ok {
		return p
	}
	return nil
}
