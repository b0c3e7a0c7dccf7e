package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	partyID := uuid.New()
	const secret = "test-secret"
	const pubKey = "deadbeef"

	token, err := GenerateJWT(secret, partyID, pubKey, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.PartyID != partyID {
		t.Errorf("party id = %s, want %s", claims.PartyID, partyID)
	}
	if claims.PublicKey != pubKey {
		t.Errorf("public key = %s, want %s", claims.PublicKey, pubKey)
	}
	if claims.Issuer != "trade-escrow" {
		t.Errorf("issuer = %s, want trade-escrow", claims.Issuer)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret-a", uuid.New(), "aa", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT("secret-b", token); err == nil {
		t.Error("ParseJWT with a wrong secret succeeded, want error")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("secret", uuid.New(), "aa", time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := ParseJWT("secret", token); err == nil {
		t.Error("ParseJWT on an expired token succeeded, want error")
	}
}
