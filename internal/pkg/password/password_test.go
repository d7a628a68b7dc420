package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(4) // 测试用最低成本

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if digest == "secret1" || digest == "" {
		t.Fatalf("digest must not equal plaintext")
	}

	if !h.Verify("secret1", digest) {
		t.Fatalf("expected correct password to verify")
	}
	if h.Verify("secret2", digest) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(4)

	first, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same plaintext must differ")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := NewHasher(4)

	if h.Verify("secret1", "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest must verify false")
	}
	if h.Verify("secret1", "") {
		t.Fatalf("empty digest must verify false")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	h := NewHasher(1000)
	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash with clamped cost failed: %v", err)
	}
	if !h.Verify("secret1", digest) {
		t.Fatalf("expected verify to succeed")
	}
}
