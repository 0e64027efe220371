package middleware

import (
	"strings"
)

// IsPublicRoute проверяет, является ли маршрут публичным
func IsPublicRoute(path string) bool {
	switch path {
	case "/", "/health", "/api/auth/login":
		return true
	}
	return strings.HasPrefix(path, "/api/auth/login/")
}
