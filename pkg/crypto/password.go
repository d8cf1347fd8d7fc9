package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash          = errors.New("invalid hash format")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrIncompatibleVersion  = errors.New("incompatible argon2 version")
)

// PasswordHandler hashes credentials before they reach storage.
type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// Ensure Argon2 implements PasswordHandler
var _ PasswordHandler = (*Argon2)(nil)

type Argon2 struct {
	Memory      uint32 // Memory cost in KiB
	Iterations  uint32 // Number of iterations (time cost)
	Parallelism uint8  // Number of parallel threads
	SaltLength  uint32 // Length of random salt. Ignored during Verify()
	KeyLength   uint32 // Length of generated key
}

// NewArgon2 returns argon2id with the OWASP recommended parameters.
//
// @ref https://cheatsheetseries.owasp.org/cheatsheets/Password_Storage_Cheat_Sheet.html
func NewArgon2() *Argon2 {
	return &Argon2{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash returns a PHC formatted string:
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>
func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.Memory,
		a.Iterations,
		a.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the parameters stored in encodedHash, so
// hashes made with other settings still verify.
func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	params, salt, key, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return subtle.ConstantTimeCompare(key, computed) == 1, nil
}

func decodeArgon2Hash(encodedHash string) (*Argon2, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, nil, nil, ErrInvalidHash
	}
	if parts[1] != "argon2id" {
		return nil, nil, nil, ErrUnsupportedAlgorithm
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return nil, nil, nil, ErrIncompatibleVersion
	}

	params := &Argon2{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid salt encoding: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid hash encoding: %w", err)
	}
	if len(key) == 0 {
		return nil, nil, nil, ErrInvalidHash
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
