package token

import (
	"errors"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	codec := NewCodec("test_secret")

	signed, err := codec.Sign(Claims{SubjectID: "507f1f77bcf86cd799439011", Access: "auth"})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.SubjectID != "507f1f77bcf86cd799439011" {
		t.Fatalf("unexpected subject: %s", claims.SubjectID)
	}
	if claims.Access != "auth" {
		t.Fatalf("unexpected access: %s", claims.Access)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewCodec("secret1").Sign(Claims{SubjectID: "abc", Access: "auth"})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	_, err = NewCodec("secret2").Verify(signed)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	codec := NewCodec("test_secret")

	for _, tokenStr := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := codec.Verify(tokenStr); err == nil {
			t.Fatalf("expected error for %q", tokenStr)
		} else if errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected malformed error for %q, got signature error", tokenStr)
		}
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	codec := NewCodec("test_secret")

	signed, err := codec.Sign(Claims{SubjectID: "abc", Access: "auth"})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := codec.Verify(tampered); err == nil {
		t.Fatalf("expected tampered token to fail")
	}
}
