package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches the stored encoding. A malformed
	// encoding yields (false, nil); the error return is reserved for internal
	// failures.
	Verify(password string, encoded string) (bool, error)
}
