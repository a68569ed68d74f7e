package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/marmos91/rowguard/pkg/auth"
	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/store"
)

func createTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	cfg := auth.JWTConfig{
		Secret: "test-secret-key-that-is-at-least-32-characters-long",
		Issuer: "test",
	}
	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		t.Fatalf("failed to create JWT service: %v", err)
	}
	return svc
}

// createTestPool returns a pool over an in-memory engine holding one
// enabled user, "testuser".
func createTestPool(t *testing.T) (*engine.Pool, *store.GORMStore, string) {
	t.Helper()
	s, err := store.New(&store.Config{Type: store.DatabaseTypeSQLite, SQLite: store.SQLiteConfig{Path: ":memory:"}})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	hash, err := models.HashPasswordWithCost("testpassword", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	id, err := s.CreateUser(context.Background(), &models.User{Username: "testuser", PasswordHash: hash, Enabled: true, Role: string(models.RoleUser)})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	pool := engine.New(s, engine.Config{}).NewPool(2)
	t.Cleanup(pool.Close)
	return pool, s, id
}

func TestGetClaimsFromContext(t *testing.T) {
	t.Run("no claims in context", func(t *testing.T) {
		if claims := GetClaimsFromContext(context.Background()); claims != nil {
			t.Error("expected nil claims for empty context")
		}
	})

	t.Run("claims present in context", func(t *testing.T) {
		expected := &auth.Claims{UserID: "user-123", Username: "testuser"}
		ctx := context.WithValue(context.Background(), claimsContextKey, expected)
		claims := GetClaimsFromContext(ctx)
		if claims == nil {
			t.Fatal("expected claims to be present")
		}
		if claims.UserID != expected.UserID {
			t.Errorf("expected UserID %s, got %s", expected.UserID, claims.UserID)
		}
	})

	t.Run("wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), claimsContextKey, "not-claims")
		if claims := GetClaimsFromContext(ctx); claims != nil {
			t.Error("expected nil claims for wrong type")
		}
	})
}

func TestConnFromContext(t *testing.T) {
	if c := ConnFromContext(context.Background()); c != nil {
		t.Error("expected nil connection for empty context")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		wantToken   string
		wantSuccess bool
	}{
		{"empty header", "", "", false},
		{"bearer token", "Bearer abc123", "abc123", true},
		{"bearer lowercase", "bearer abc123", "abc123", true},
		{"BEARER uppercase", "BEARER abc123", "abc123", true},
		{"missing token", "Bearer", "", false},
		{"empty token", "Bearer ", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"no space", "Bearerabc123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			token, ok := extractBearerToken(req)
			if ok != tt.wantSuccess {
				t.Errorf("extractBearerToken() success = %v, want %v", ok, tt.wantSuccess)
			}
			if token != tt.wantToken {
				t.Errorf("extractBearerToken() token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestJWTAuth(t *testing.T) {
	jwtService := createTestJWTService(t)
	pool, s, userID := createTestPool(t)

	tokens, err := jwtService.GenerateTokenPair(&auth.Handle{UserID: userID, Username: "testuser"})
	if err != nil {
		t.Fatalf("failed to generate tokens: %v", err)
	}

	mustNotRun := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		JWTAuth(jwtService, pool)(mustNotRun).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		rr := httptest.NewRecorder()
		JWTAuth(jwtService, pool)(mustNotRun).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokens.RefreshToken)
		rr := httptest.NewRecorder()
		JWTAuth(jwtService, pool)(mustNotRun).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("valid token binds connection", func(t *testing.T) {
		var claims *auth.Claims
		var current string
		handler := JWTAuth(jwtService, pool)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims = GetClaimsFromContext(r.Context())
			if c := ConnFromContext(r.Context()); c != nil {
				current, _ = c.CurrentUser()
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		if claims == nil {
			t.Fatal("expected claims to be set in context")
		}
		if claims.Username != "testuser" {
			t.Errorf("expected username %q, got %q", "testuser", claims.Username)
		}
		if current != userID {
			t.Errorf("expected bound user %q, got %q", userID, current)
		}
		if pool.Idle() != 1 {
			t.Errorf("expected connection returned to pool, idle = %d", pool.Idle())
		}
	})

	t.Run("disabled user rejected", func(t *testing.T) {
		if err := s.SetUserEnabled(context.Background(), userID, false); err != nil {
			t.Fatalf("failed to disable user: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		rr := httptest.NewRecorder()
		JWTAuth(jwtService, pool)(mustNotRun).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
		}
	})
}
