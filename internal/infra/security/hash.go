package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength          = 16
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
)

// Argon2Params captures tunable parameters for Argon2id password hashing.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params returns the library default configuration. The work
// factor is comparable to bcrypt cost 10.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      argonMemory,
		Iterations:  argonTime,
		Parallelism: argonThreads,
		SaltLength:  saltLength,
		KeyLength:   argonKeyLen,
	}
}

// Argon2Hasher implements port.PasswordHasher using Argon2id.
type Argon2Hasher struct {
	params Argon2Params
}

// NewArgon2Hasher constructs a hasher, falling back to defaults for any
// zero-valued parameter.
func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	def := DefaultArgon2Params()
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	return &Argon2Hasher{params: params}
}

// Hash generates an Argon2id hash for the provided password.
// The resulting string is encoded as "salt:hash" with both components base64-encoded.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)
	encodedHash := base64.StdEncoding.EncodeToString(sum)

	return fmt.Sprintf("%s:%s", encodedSalt, encodedHash), nil
}

// Verify compares the provided password against a stored hash. A malformed
// encoding is reported as a plain mismatch so stored garbage can never be
// distinguished from a wrong password by the caller.
func (h *Argon2Hasher) Verify(password, encoded string) (bool, error) {
	if password == "" || encoded == "" {
		return false, nil
	}

	parts := strings.Split(encoded, ":")
	if len(parts) != 2 {
		return false, nil
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, nil
	}

	storedHash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, nil
	}
	if len(storedHash) == 0 {
		return false, nil
	}

	computed := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, uint32(len(storedHash)))

	return subtle.ConstantTimeCompare(computed, storedHash) == 1, nil
}
