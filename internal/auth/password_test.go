package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordRoundTrip(t *testing.T) {
	const password = "gateway-admin-2026"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=1$") {
		t.Errorf("hash prefix = %q", hash)
	}

	ok, err := VerifyPassword(password, hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = VerifyPassword("gateway-admin-2027", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() wrong password error = %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("repeat")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := HashPassword("repeat")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == second {
		t.Error("identical hashes for the same password; salt is not random")
	}
}

func TestVerifyPasswordHonoursStoredCosts(t *testing.T) {
	// A hash produced with cheaper settings than hashingParams must
	// still verify: the costs come from the PHC string, not the
	// package defaults.
	saved := hashingParams
	hashingParams = argon2idParams{memory: 8 * 1024, passes: 1, threads: 1}
	cheap, err := HashPassword("legacy")
	hashingParams = saved
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	ok, err := VerifyPassword("legacy", cheap)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("hash with non-default costs rejected")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"plaintext", "hunter2"},
		{"other algorithm", "$bcrypt$v=19$m=65536,t=3,p=1$c2FsdA$a2V5"},
		{"missing fields", "$argon2id$v=19$m=65536,t=3,p=1"},
		{"bad version", "$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$a2V5"},
		{"bad costs", "$argon2id$v=19$m=what$c2FsdA$a2V5"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=1$!!$a2V5"},
		{"bad key encoding", "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyPassword("anything", tt.stored); !errors.Is(err, ErrMalformedHash) {
				t.Errorf("VerifyPassword() error = %v, want ErrMalformedHash", err)
			}
		})
	}
}
