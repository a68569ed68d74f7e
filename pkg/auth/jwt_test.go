package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-key-must-be-32-chars!"

func newTestJWTService(t *testing.T, access time.Duration) *JWTService {
	t.Helper()
	service, err := NewJWTService(JWTConfig{
		Secret:              testSecret,
		Issuer:              "test-issuer",
		AccessTokenDuration: access,
	})
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	return service
}

func TestNewJWTService_ShortSecret(t *testing.T) {
	for _, secret := range []string{"", "short"} {
		_, err := NewJWTService(JWTConfig{Secret: secret})
		if !errors.Is(err, ErrInvalidSecretLength) {
			t.Errorf("secret %q: err = %v, want ErrInvalidSecretLength", secret, err)
		}
	}
}

func TestNewJWTService_Defaults(t *testing.T) {
	service, err := NewJWTService(JWTConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.config.Issuer != "rowguard" {
		t.Errorf("Issuer = %q, want rowguard", service.config.Issuer)
	}
	if service.AccessTokenDuration() != 15*time.Minute {
		t.Errorf("AccessTokenDuration = %v, want 15m", service.AccessTokenDuration())
	}
	if service.config.RefreshTokenDuration != 24*time.Hour {
		t.Errorf("RefreshTokenDuration = %v, want 24h", service.config.RefreshTokenDuration)
	}
}

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	service := newTestJWTService(t, 15*time.Minute)
	h := &Handle{UserID: "u-1", Username: "casey", PrincipalID: "p-1", PrincipalName: "cidz"}

	pair, err := service.GenerateTokenPair(h)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", pair.TokenType)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn = %d", pair.ExpiresIn)
	}

	claims, err := service.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	got := claims.Handle()
	if got.UserID != "u-1" || got.Username != "casey" || got.PrincipalID != "p-1" || got.PrincipalName != "cidz" {
		t.Errorf("Handle() = %+v", got)
	}
	if claims.Subject != "cidz" {
		t.Errorf("Subject = %q, want the principal name", claims.Subject)
	}

	if _, err := service.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Errorf("ValidateRefreshToken: %v", err)
	}
}

func TestValidate_WrongTokenType(t *testing.T) {
	service := newTestJWTService(t, time.Minute)
	pair, err := service.GenerateTokenPair(&Handle{UserID: "u-1", Username: "casey"})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := service.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("refresh as access: err = %v, want ErrInvalidTokenType", err)
	}
	if _, err := service.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("access as refresh: err = %v, want ErrInvalidTokenType", err)
	}
}

func TestValidate_Expired(t *testing.T) {
	service := newTestJWTService(t, -time.Minute)
	pair, err := service.GenerateTokenPair(&Handle{UserID: "u-1", Username: "casey"})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if _, err := service.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("err = %v, want ErrExpiredToken", err)
	}
}

func TestValidate_ForeignSecretOrIssuer(t *testing.T) {
	service := newTestJWTService(t, time.Minute)
	pair, _ := service.GenerateTokenPair(&Handle{UserID: "u-1", Username: "casey"})

	other, _ := NewJWTService(JWTConfig{Secret: "another-secret-that-is-32-chars-long", Issuer: "test-issuer"})
	if _, err := other.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret: err = %v, want ErrInvalidToken", err)
	}

	otherIssuer, _ := NewJWTService(JWTConfig{Secret: testSecret, Issuer: "someone-else"})
	if _, err := otherIssuer.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign issuer: err = %v, want ErrInvalidToken", err)
	}

	if _, err := service.ValidateAccessToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v, want ErrInvalidToken", err)
	}
}
