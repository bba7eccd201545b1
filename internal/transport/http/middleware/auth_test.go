package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

// fakeDenylist implements token.Denylist in memory.
type fakeDenylist struct {
	denied map[string]bool
	err    error
}

func (f *fakeDenylist) Deny(ctx context.Context, jti string, ttl time.Duration) error {
	if f.denied == nil {
		f.denied = map[string]bool{}
	}
	f.denied[jti] = true
	return f.err
}

func (f *fakeDenylist) IsDenied(ctx context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.denied[jti], nil
}

func signToken(t *testing.T, userID int64, jti string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     jti,
		"iat":     now.Unix(),
		"exp":     now.Add(expiresIn).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// echoHandler records the identity the middleware resolved.
func echoHandler(gotUserID *int64, gotOK *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID, *gotOK = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	var userID int64
	var ok bool
	handler := AuthMiddleware(testSecret, &fakeDenylist{})(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "jti-1", time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ok || userID != 42 {
		t.Errorf("resolved user = (%d, %v), want (42, true)", userID, ok)
	}
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	var userID int64
	var ok bool
	handler := AuthMiddleware(testSecret, &fakeDenylist{})(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, 7, "jti-1", time.Hour)})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	var userID int64
	var ok bool
	handler := AuthMiddleware(testSecret, &fakeDenylist{})(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ok {
		t.Error("handler must not run for an unauthenticated request")
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	var userID int64
	var ok bool
	handler := AuthMiddleware(testSecret, &fakeDenylist{})(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "jti-1", -time.Minute))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "TOKEN_EXPIRED") {
		t.Errorf("body = %s, want TOKEN_EXPIRED code", rec.Body.String())
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	var userID int64
	var ok bool
	handler := AuthMiddleware("other-secret", &fakeDenylist{})(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "jti-1", time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddleware_DenylistedToken(t *testing.T) {
	var userID int64
	var ok bool
	denylist := &fakeDenylist{denied: map[string]bool{"jti-logged-out": true}}
	handler := AuthMiddleware(testSecret, denylist)(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "jti-logged-out", time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 after logout", rec.Code)
	}
	if ok {
		t.Error("handler must not run for a logged-out session")
	}
}

func TestOptionalAuthMiddleware_Anonymous(t *testing.T) {
	var userID int64
	var ok bool
	handler := OptionalAuthMiddleware(testSecret, &fakeDenylist{})(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for anonymous access", rec.Code)
	}
	if ok {
		t.Error("anonymous request must not carry a user ID")
	}
}

func TestOptionalAuthMiddleware_ValidToken(t *testing.T) {
	var userID int64
	var ok bool
	handler := OptionalAuthMiddleware(testSecret, &fakeDenylist{})(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "jti-1", time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !ok || userID != 42 {
		t.Errorf("resolved user = (%d, %v), want (42, true)", userID, ok)
	}
}

func TestOptionalAuthMiddleware_BadTokenIsAnonymous(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{
			"garbage token",
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-jwt") },
		},
		{
			"expired token",
			func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, 42, "jti-1", -time.Minute))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var userID int64
			var ok bool
			handler := OptionalAuthMiddleware(testSecret, &fakeDenylist{})(echoHandler(&userID, &ok))

			req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200 (fall back to anonymous)", rec.Code)
			}
			if ok {
				t.Error("invalid token must resolve to anonymous, not an identity")
			}
		})
	}
}

func TestOptionalAuthMiddleware_DenylistedIsAnonymous(t *testing.T) {
	var userID int64
	var ok bool
	denylist := &fakeDenylist{denied: map[string]bool{"jti-logged-out": true}}
	handler := OptionalAuthMiddleware(testSecret, denylist)(echoHandler(&userID, &ok))

	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "jti-logged-out", time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ok {
		t.Error("logged-out token must resolve to anonymous")
	}
}

func TestGetTokenInfoFromContext(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	ctx := withClaims(context.Background(), claims{userID: 1, jti: "jti-1", exp: exp})

	jti, gotExp, ok := GetTokenInfoFromContext(ctx)
	if !ok {
		t.Fatal("expected token info in context")
	}
	if jti != "jti-1" || !gotExp.Equal(exp) {
		t.Errorf("token info = (%q, %v), want (jti-1, %v)", jti, gotExp, exp)
	}
}
