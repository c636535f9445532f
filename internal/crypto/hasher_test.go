package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	h := NewCredentialHasher()

	s1, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	s2, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}

	if len(s1) != 16 || len(s2) != 16 {
		t.Fatalf("salt lengths = %d, %d, want 16", len(s1), len(s2))
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestHash_DeterministicForSameInputs(t *testing.T) {
	h := NewCredentialHasher()
	salt := bytes.Repeat([]byte{0xAB}, 16)

	k1 := h.Hash("pimsync1:secret", salt)
	k2 := h.Hash("pimsync1:secret", salt)

	if len(k1) != 32 {
		t.Fatalf("hash length = %d, want 32", len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected equal hashes for same input")
	}
}

func TestHash_DependsOnSalt(t *testing.T) {
	h := NewCredentialHasher()

	k1 := h.Hash("pimsync1:secret", bytes.Repeat([]byte{0x01}, 16))
	k2 := h.Hash("pimsync1:secret", bytes.Repeat([]byte{0x02}, 16))

	if bytes.Equal(k1, k2) {
		t.Fatalf("expected different hashes for different salts")
	}
}

func TestMatches(t *testing.T) {
	h := NewCredentialHasher()
	salt := bytes.Repeat([]byte{0x07}, 16)
	hash := h.Hash("pimsync1:secret", salt)

	if !h.Matches("pimsync1:secret", salt, hash) {
		t.Fatalf("expected credential to match")
	}
	if h.Matches("pimsync1:other", salt, hash) {
		t.Fatalf("expected other credential not to match")
	}
	if h.Matches("pimsync1:secret", salt, nil) {
		t.Fatalf("expected empty hash never to match")
	}
}

func TestNewCredential(t *testing.T) {
	h := NewCredentialHasher()

	c1, err := h.NewCredential()
	if err != nil {
		t.Fatalf("NewCredential error: %v", err)
	}
	c2, err := h.NewCredential()
	if err != nil {
		t.Fatalf("NewCredential error: %v", err)
	}

	if !strings.HasPrefix(c1, CredentialPrefix) {
		t.Fatalf("credential %q lacks prefix", c1)
	}
	if len(c1) != len(CredentialPrefix)+32 {
		t.Fatalf("credential length = %d", len(c1))
	}
	if c1 == c2 {
		t.Fatalf("expected credentials to differ")
	}
}
