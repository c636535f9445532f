// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/argon2"
)

// CredentialPrefix marks credentials issued in the current format.
const CredentialPrefix = "pimsync1:"

const (
	saltLen       = 16
	credentialLen = 24
)

// credentialHasher is the private implementation of [CredentialHasher].
type credentialHasher struct {
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewCredentialHasher constructs a [CredentialHasher] with Argon2id
// parameters sized for a small device:
//   - time cost:   2 iterations
//   - memory cost: 19 MiB
//   - parallelism: 1 thread
//   - key length:  32 bytes
func NewCredentialHasher() CredentialHasher {
	return &credentialHasher{
		argonTime:    2,
		argonMemory:  19 * 1024,
		argonThreads: 1,
		argonKeyLen:  32,
	}
}

// GenerateSalt implements [CredentialHasher].
func (h *credentialHasher) GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Hash implements [CredentialHasher].
func (h *credentialHasher) Hash(credential string, salt []byte) []byte {
	return argon2.IDKey([]byte(credential), salt, h.argonTime, h.argonMemory, h.argonThreads, h.argonKeyLen)
}

// Matches implements [CredentialHasher].
func (h *credentialHasher) Matches(credential string, salt, hash []byte) bool {
	if len(hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(h.Hash(credential, salt), hash) == 1
}

// NewCredential implements [CredentialHasher]: the prefix followed by 24
// random bytes in unpadded URL-safe base64.
func (h *credentialHasher) NewCredential() (string, error) {
	raw := make([]byte, credentialLen)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return CredentialPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}
