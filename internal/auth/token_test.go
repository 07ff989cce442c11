package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifyToken_RoundTrip(t *testing.T) {
	v := NewVerifier("shared-secret")

	token, err := v.Issue("user-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := v.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42, got %q", userID)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	issuer := NewVerifier("secret-a")
	verifier := NewVerifier("secret-b")

	token, err := issuer.Issue("user-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.VerifyToken(token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	v := NewVerifier("shared-secret")

	token, err := v.Issue("user-42", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := v.VerifyToken(token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestVerifyToken_MissingSubject(t *testing.T) {
	v := NewVerifier("shared-secret")

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.VerifyToken(token); err == nil {
		t.Fatal("expected verification failure without subject claim")
	}
}

func TestVerifyToken_RejectsUnsignedAlg(t *testing.T) {
	v := NewVerifier("shared-secret")

	raw := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-42"})
	token, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.VerifyToken(token); err == nil {
		t.Fatal("alg=none token must be rejected")
	}
}
