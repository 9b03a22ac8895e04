package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/transfa/wallet-service/internal/domain"
)

const testSecret = "middleware-test-secret"

func signTestToken(t *testing.T, secret string, userID int64, email string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestBearerAuthMiddleware(t *testing.T) {
	var gotUserID int64
	var gotEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = AuthUserID(r.Context())
		gotEmail, _ = AuthEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := BearerAuthMiddleware(testSecret)(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			authHeader: "Bearer " + signTestToken(t, "other-secret", 1, "a@b.com", time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + signTestToken(t, testSecret, 1, "a@b.com", -time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + signTestToken(t, testSecret, 7, "alice@example.com", time.Hour),
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/account/fund", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	if gotUserID != 7 || gotEmail != "alice@example.com" {
		t.Fatalf("expected identity in context, got userID=%d email=%q", gotUserID, gotEmail)
	}
}

func TestBearerAuthMiddlewareMessages(t *testing.T) {
	handler := BearerAuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/account/1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if body := rec.Body.String(); !containsJSONMessage(body, domain.MsgNoToken) {
		t.Fatalf("expected %q in body, got %s", domain.MsgNoToken, body)
	}

	req = httptest.NewRequest(http.MethodGet, "/account/1", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if body := rec.Body.String(); !containsJSONMessage(body, domain.MsgInvalidToken) {
		t.Fatalf("expected %q in body, got %s", domain.MsgInvalidToken, body)
	}
}
