package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"biteclub/internal/httputil"
	"biteclub/internal/model"
	"biteclub/internal/token"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
	// TokenJTIKey is the context key for the access token's id
	TokenJTIKey contextKey = "token_jti"
	// TokenExpKey is the context key for the access token's expiry
	TokenExpKey contextKey = "token_exp"
)

type claims struct {
	userID int64
	jti    string
	exp    time.Time
}

// AuthMiddleware validates the JWT and rejects denylisted tokens, so logout
// takes effect before the token's natural expiry. The token is read from the
// Authorization header first, then the access_token cookie.
func AuthMiddleware(jwtSecret string, denylist token.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			c, errCode := parseToken(tokenString, jwtSecret)
			if errCode != "" {
				writeTokenError(w, errCode)
				return
			}

			if c.jti != "" {
				denied, err := denylist.IsDenied(r.Context(), c.jti)
				if err != nil {
					slog.Error("denylist check failed", "error", err)
					httputil.WriteInternalError(w, "Failed to verify session")
					return
				}
				if denied {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Session has been logged out")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), c)))
		})
	}
}

// OptionalAuthMiddleware resolves an identity when a valid token is present
// and leaves the request anonymous otherwise. Denylisted tokens are treated
// as anonymous, not as errors.
func OptionalAuthMiddleware(jwtSecret string, denylist token.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			c, errCode := parseToken(tokenString, jwtSecret)
			if errCode != "" {
				next.ServeHTTP(w, r)
				return
			}

			if c.jti != "" {
				if denied, err := denylist.IsDenied(r.Context(), c.jti); err != nil || denied {
					next.ServeHTTP(w, r)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), c)))
		})
	}
}

func extractToken(r *http.Request) string {
	// Authorization header first (API clients), then cookie (browsers)
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// parseToken validates the signature and claims. On failure it returns the
// API error code to surface; an empty code means success.
func parseToken(tokenString, jwtSecret string) (claims, string) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return claims{}, model.CodeTokenExpired
		}
		return claims{}, model.CodeTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return claims{}, model.CodeTokenInvalid
	}

	userIDFloat, ok := mapClaims["user_id"].(float64)
	if !ok {
		return claims{}, model.CodeTokenInvalid
	}

	c := claims{userID: int64(userIDFloat)}
	if jti, ok := mapClaims["jti"].(string); ok {
		c.jti = jti
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		c.exp = time.Unix(int64(exp), 0)
	}

	return c, ""
}

func writeTokenError(w http.ResponseWriter, code string) {
	if code == model.CodeTokenExpired {
		httputil.WriteUnauthorizedWithCode(w, code, "Access token has expired")
		return
	}
	httputil.WriteUnauthorizedWithCode(w, code, "Invalid authentication token")
}

func withClaims(ctx context.Context, c claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, c.userID)
	ctx = context.WithValue(ctx, TokenJTIKey, c.jti)
	ctx = context.WithValue(ctx, TokenExpKey, c.exp)
	return ctx
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns false when the request is anonymous.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetTokenInfoFromContext extracts the access token's id and expiry, used by
// logout to denylist the token for the rest of its lifetime.
func GetTokenInfoFromContext(ctx context.Context) (jti string, exp time.Time, ok bool) {
	jti, ok = ctx.Value(TokenJTIKey).(string)
	if !ok {
		return "", time.Time{}, false
	}
	exp, ok = ctx.Value(TokenExpKey).(time.Time)
	return jti, exp, ok
}
