package appMiddleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"TalentDesk/server/internal/logger"

	"github.com/golang-jwt/jwt/v4"
)

// Identity is the already-authenticated, role-resolved caller established by
// the session. The core never re-derives roles from session objects.
type Identity struct {
	EmployeeID int
	Name       string
	Email      string
	Role       string
}

type contextKey struct{}

var identityKey contextKey

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// ParseToken validates a session JWT and resolves the embedded identity.
// The websocket handler reuses it for the token query param.
func ParseToken(tokenStr, secret string) (Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["employee_id"] == nil {
		return Identity{}, errors.New("invalid claims in token")
	}

	id := Identity{EmployeeID: int(claims["employee_id"].(float64))}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	return id, nil
}

func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Log.Infof("Missing Authorization header on %s %s", r.Method, r.URL.Path)
				http.Error(w, "Missing token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				http.Error(w, "Invalid token format", http.StatusUnauthorized)
				return
			}

			id, err := ParseToken(tokenStr, secret)
			if err != nil {
				logger.Log.Infof("Rejected token on %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
