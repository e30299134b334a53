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

// argonParams are the tunable Argon2id cost parameters.
type argonParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

// currentParams is what new hashes are created with (OWASP recommendation).
var currentParams = argonParams{
	time:    3,
	memory:  64 * 1024, // KiB
	threads: 1,
}

const (
	argonKeyLen  = 32
	argonSaltLen = 16
)

// errInvalidHash is returned for a stored hash that is not an Argon2id PHC string.
var errInvalidHash = errors.New("invalid password hash format")

// HashPassword hashes a plaintext password with Argon2id and returns the PHC
// string: $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	p := currentParams
	hash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword checks a plaintext password against a PHC hash using the
// parameters stored in the hash.
func VerifyPassword(password, encodedHash string) (bool, error) {
	ph, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), ph.salt, ph.params.time, ph.params.memory, ph.params.threads, uint32(len(ph.hash))) //nolint:gosec // hash length always fits uint32

	return subtle.ConstantTimeCompare(ph.hash, candidate) == 1, nil
}

// NeedsRehash reports whether a stored hash was made with weaker parameters
// than new hashes use.
func NeedsRehash(encodedHash string) bool {
	ph, err := decodePHC(encodedHash)
	if err != nil {
		return true
	}
	return ph.params != currentParams
}

type phcHash struct {
	params argonParams
	salt   []byte
	hash   []byte
}

// decodePHC parses "$argon2id$v=19$m=..,t=..,p=..$salt$hash".
func decodePHC(encoded string) (phcHash, error) {
	var ph phcHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" { //nolint:mnd // PHC format has exactly 6 $-delimited parts
		return ph, errInvalidHash
	}
	if parts[1] != "argon2id" {
		return ph, fmt.Errorf("%w: unsupported algorithm %q", errInvalidHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return ph, fmt.Errorf("%w: parsing version: %w", errInvalidHash, err)
	}
	if version != argon2.Version {
		return ph, fmt.Errorf("%w: unsupported version %d", errInvalidHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &ph.params.memory, &ph.params.time, &ph.params.threads); err != nil {
		return ph, fmt.Errorf("%w: parsing parameters: %w", errInvalidHash, err)
	}

	var err error
	if ph.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return ph, fmt.Errorf("%w: decoding salt: %w", errInvalidHash, err)
	}
	if ph.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return ph, fmt.Errorf("%w: decoding hash: %w", errInvalidHash, err)
	}
	if len(ph.hash) == 0 {
		return ph, fmt.Errorf("%w: empty hash", errInvalidHash)
	}
	return ph, nil
}
