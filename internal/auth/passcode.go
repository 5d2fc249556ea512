// internal/auth/passcode.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMalformedHash is returned when a stored room passcode hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed passcode hash")
	// ErrArgonVersion is returned for hashes written by another argon2 version.
	ErrArgonVersion = errors.New("unsupported argon2 version")
)

type argonParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

var passcodeParams = argonParams{
	memory:      64 * 1024,
	iterations:  3,
	parallelism: uint8(max(1, runtime.NumCPU()/2)),
	saltLength:  16,
	keyLength:   32,
}

// storedPasscode is the PHC-style record kept on a room in place of the
// plaintext passcode.
type storedPasscode struct {
	argonParams
	salt []byte
	key  []byte
}

func (s storedPasscode) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, s.memory, s.iterations, s.parallelism,
		base64.RawStdEncoding.EncodeToString(s.salt),
		base64.RawStdEncoding.EncodeToString(s.key))
}

// derive hashes passcode with the record's parameters and salt.
func (s storedPasscode) derive(passcode string) []byte {
	return argon2.IDKey([]byte(passcode), s.salt, s.iterations, s.memory, s.parallelism, s.keyLength)
}

func parseStoredPasscode(encoded string) (storedPasscode, error) {
	var s storedPasscode
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return s, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return s, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return s, ErrArgonVersion
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &s.memory, &s.iterations, &s.parallelism); err != nil {
		return s, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	var err error
	if s.salt, err = base64.RawStdEncoding.Strict().DecodeString(parts[4]); err != nil {
		return s, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if s.key, err = base64.RawStdEncoding.Strict().DecodeString(parts[5]); err != nil {
		return s, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	s.saltLength = uint32(len(s.salt))
	s.keyLength = uint32(len(s.key))
	return s, nil
}

func hashPasscode(passcode string, p argonParams) (string, error) {
	s := storedPasscode{argonParams: p, salt: make([]byte, p.saltLength)}
	if _, err := rand.Read(s.salt); err != nil {
		return "", err
	}
	s.key = s.derive(passcode)
	return s.String(), nil
}

// HashPasscode hashes a private room passcode with Argon2id.
func HashPasscode(passcode string) (string, error) {
	return hashPasscode(passcode, passcodeParams)
}

// CheckPasscode reports whether passcode matches the stored hash. An empty
// hash means the room has no passcode and anything matches.
func CheckPasscode(passcode, encodedHash string) (bool, error) {
	if encodedHash == "" {
		return true, nil
	}
	s, err := parseStoredPasscode(encodedHash)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(s.key, s.derive(passcode)) == 1, nil
}
