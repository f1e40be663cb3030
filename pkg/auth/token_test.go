package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andreviana/cellshop-pos-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "cellshop-pos",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	accountID := uuid.New()
	now := time.Now()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		AccountID: accountID,
		Store:     "loja1@cellshop.com",
	})
	if err != nil {
		t.Fatalf("MintAccessToken failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if claims.AccountID != accountID {
		t.Fatalf("expected account id %s, got %s", accountID, claims.AccountID)
	}
	if claims.Store != "loja1@cellshop.com" {
		t.Fatalf("unexpected store claim %q", claims.Store)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintAccessToken_Validation(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	if _, err := MintAccessToken(cfg, now, AccessTokenPayload{Store: "loja1@cellshop.com"}); err == nil {
		t.Fatal("expected missing account id to fail")
	}
	if _, err := MintAccessToken(cfg, now, AccessTokenPayload{AccountID: uuid.New()}); err == nil {
		t.Fatal("expected missing store to fail")
	}

	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, now, AccessTokenPayload{AccountID: uuid.New(), Store: "x@y"}); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestParseAccessToken_RejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		AccountID: uuid.New(),
		Store:     "loja1@cellshop.com",
	})
	if err != nil {
		t.Fatalf("MintAccessToken failed: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{
		AccountID: uuid.New(),
		Store:     "loja1@cellshop.com",
		JTI:       "fixed-jti",
	})
	if err != nil {
		t.Fatalf("MintAccessToken failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail strict parse")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessTokenAllowExpired failed: %v", err)
	}
	if claims.ID != "fixed-jti" {
		t.Fatalf("unexpected jti %q", claims.ID)
	}
}
