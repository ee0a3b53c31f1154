package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/moblog/backend/internal/auth"
	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

const callerKey contextKey = "caller"

// TokenVerifier verifies a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserGetter resolves a username to a stored user
type UserGetter interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RequireAuth resolves the caller's identity from a bearer token and rejects
// the request before any handler logic runs when it cannot. A missing token,
// a failed verification and a token whose user no longer exists all produce
// the same 401 response.
func RequireAuth(verifier TokenVerifier, users UserGetter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := resolveCaller(r, verifier, users, logger)
			if !ok {
				respondUnauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth binds the caller when a valid token is present and lets the
// request through anonymously otherwise
func OptionalAuth(verifier TokenVerifier, users UserGetter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller, ok := resolveCaller(r, verifier, users, logger); ok {
				r = r.WithContext(context.WithValue(r.Context(), callerKey, caller))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetCaller retrieves the authenticated user from context
func GetCaller(ctx context.Context) (*models.User, bool) {
	caller, ok := ctx.Value(callerKey).(*models.User)
	return caller, ok
}

// resolveCaller extracts a token, verifies it and looks the subject up
func resolveCaller(r *http.Request, verifier TokenVerifier, users UserGetter, logger *zap.Logger) (*models.User, bool) {
	token := extractToken(r)
	if token == "" {
		return nil, false
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		logger.Debug("token verification failed", zap.Error(err))
		return nil, false
	}

	// The user may have been deleted after the token was issued
	user, err := users.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		logger.Debug("token user lookup failed",
			zap.String("username", claims.Username),
			zap.Error(err),
		)
		return nil, false
	}

	return user, true
}

// extractToken checks, in strict priority order: the Authorization header,
// the "token" cookie, then a "token" field in a JSON request body
func extractToken(r *http.Request) string {
	// Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" && parts[1] != "" {
			return parts[1]
		}
	}

	// If not in header, try cookie
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// Finally, try the request body
	return tokenFromBody(r)
}

// tokenFromBody reads a "token" field from a JSON body. The body is restored
// for downstream handlers; a body that is not parseable JSON yields no token
// rather than an error.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	return payload.Token
}

func respondUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"authentication required","success":false,"data":null,"status_code":401}`))
}
