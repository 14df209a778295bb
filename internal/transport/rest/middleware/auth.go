package middleware

import (
	"context"
	"net/http"
	"strings"

	"agricensus/internal/service"
)

type contextKey string

const (
	AdminIDKey         contextKey = "adminId"
	EnumeratorIDKey    contextKey = "enumeratorId"
	QuestionnaireIDKey contextKey = "questionnaireId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAdmin validates an admin JWT from the Authorization header
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateAdminToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, claims.AdminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireEnumerator validates an enumerator JWT from the Authorization header
// or the token query param (WebSocket upgrades cannot set headers).
func (m *AuthMiddleware) RequireEnumerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateEnumeratorToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, EnumeratorIDKey, claims.EnumeratorID)
		ctx = context.WithValue(ctx, QuestionnaireIDKey, claims.QuestionnaireID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminID extracts the admin ID from context
func GetAdminID(ctx context.Context) string {
	if v := ctx.Value(AdminIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetEnumeratorID extracts the enumerator ID from context
func GetEnumeratorID(ctx context.Context) string {
	if v := ctx.Value(EnumeratorIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetQuestionnaireID extracts the token-scoped questionnaire ID from context
func GetQuestionnaireID(ctx context.Context) string {
	if v := ctx.Value(QuestionnaireIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
