package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2idParams are cost settings for one hash. New hashes use
// hashingParams; stored hashes carry their own settings in the PHC
// string, so the defaults can be raised later without invalidating
// existing credentials.
type argon2idParams struct {
	memory  uint32 // KiB
	passes  uint32
	threads uint8
}

// hashingParams follows the OWASP sizing for Argon2id: 64 MiB, three
// passes, a single lane.
var hashingParams = argon2idParams{memory: 64 * 1024, passes: 3, threads: 1}

const (
	saltLength = 16
	keyLength  = 32
)

// ErrMalformedHash reports a stored credential that is not a readable
// argon2id PHC string.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword derives an Argon2id hash of the password and encodes it
// as a PHC string: $argon2id$v=19$m=65536,t=3,p=1$<salt>$<key>.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	p := hashingParams
	key := argon2.IDKey([]byte(password), salt, p.passes, p.memory, p.threads, keyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.passes, p.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// VerifyPassword re-derives the key with the parameters carried in the
// stored hash and compares in constant time.
func VerifyPassword(password, stored string) (bool, error) {
	p, salt, want, err := parsePHC(stored)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, p.passes, p.memory, p.threads,
		uint32(len(want))) //nolint:gosec // key length bounded by the decoded hash

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// parsePHC takes an argon2id PHC string apart into its cost settings,
// salt, and derived key.
func parsePHC(stored string) (p argon2idParams, salt, key []byte, err error) {
	rest, ok := strings.CutPrefix(stored, "$argon2id$")
	if !ok {
		return p, nil, nil, fmt.Errorf("%w: not an argon2id hash", ErrMalformedHash)
	}

	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return p, nil, nil, fmt.Errorf("%w: %d fields after algorithm, want 4", ErrMalformedHash, len(fields))
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version field %q", ErrMalformedHash, fields[0])
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &p.memory, &p.passes, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: cost field %q", ErrMalformedHash, fields[1])
	}

	salt, err = base64.RawStdEncoding.DecodeString(fields[2])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	key, err = base64.RawStdEncoding.DecodeString(fields[3])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}

	return p, salt, key, nil
}
