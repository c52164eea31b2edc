package security

import (
	"strings"
	"testing"
)

func TestArgon2HasherHashAndVerify(t *testing.T) {
	hasher := NewArgon2Hasher(Argon2Params{})

	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if parts := strings.Split(encoded, ":"); len(parts) != 2 {
		t.Fatalf("expected salt:hash encoding, got %q", encoded)
	}

	ok, err := hasher.Verify("correct horse battery staple", encoded)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify against its own hash")
	}

	ok, err = hasher.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestArgon2HasherHashIsSalted(t *testing.T) {
	hasher := NewArgon2Hasher(DefaultArgon2Params())

	first, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestArgon2HasherVerifyMalformed(t *testing.T) {
	hasher := NewArgon2Hasher(DefaultArgon2Params())

	cases := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "missing separator", encoded: "bm9zZXBhcmF0b3I"},
		{name: "too many parts", encoded: "a:b:c"},
		{name: "bad salt base64", encoded: "!!!:aGFzaA=="},
		{name: "bad hash base64", encoded: "c2FsdA==:!!!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := hasher.Verify("password", tc.encoded)
			if err != nil {
				t.Fatalf("Verify returned error: %v", err)
			}
			if ok {
				t.Fatal("expected malformed hash to be treated as mismatch")
			}
		})
	}
}
