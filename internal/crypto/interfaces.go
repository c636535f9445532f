package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/credential_hasher_mock.go -package=mock

// CredentialHasher derives and checks the salted hashes the device keeps for
// trusted desktop peers. The plain credential is never stored.
type CredentialHasher interface {
	// GenerateSalt returns a fresh random salt (16 bytes).
	GenerateSalt() ([]byte, error)

	// Hash derives the stored hash of credential with salt using Argon2id.
	Hash(credential string, salt []byte) []byte

	// Matches reports whether credential hashes to hash under salt. The
	// comparison runs in constant time.
	Matches(credential string, salt, hash []byte) bool

	// NewCredential returns a random versioned credential a peer can present.
	NewCredential() (string, error)
}
