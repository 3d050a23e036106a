// Package password produces and checks salted password digests.
//
// New digests use the configured scheme. Verify recognises both bcrypt
// ($2a$/$2b$/$2y$) and argon2id ($argon2id$) encodings, so the scheme can be
// switched without invalidating stored digests.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hashing schemes.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16

	// Bounds accepted when reading a stored argon2id digest.
	argonMinMemory uint32 = 1024
	argonMaxMemory uint32 = 1024 * 1024
	argonMaxTime   uint32 = 16
	argonMaxKeyLen        = 128
)

var (
	// ErrInvalidHash is returned by Verify for digests it cannot parse.
	ErrInvalidHash = errors.New("invalid password hash")
	// ErrPasswordTooLong is returned by Hash when bcrypt would truncate the input.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	// ErrUnknownAlgorithm is returned by New for unsupported schemes.
	ErrUnknownAlgorithm = errors.New("unknown password hash algorithm")
)

// Hasher hashes and verifies passwords.
type Hasher struct {
	algorithm  string
	bcryptCost int
}

// New creates a Hasher producing digests with the given algorithm.
// bcryptCost is ignored for argon2id.
func New(algorithm string, bcryptCost int) (*Hasher, error) {
	switch algorithm {
	case AlgorithmBcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
	return &Hasher{algorithm: algorithm, bcryptCost: bcryptCost}, nil
}

// Hash returns a salted digest of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(password)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest.
func (h *Hasher) Verify(password, digest string) (bool, error) {
	if strings.HasPrefix(digest, "$"+AlgorithmArgon2id+"$") {
		return verifyArgon2id(password, digest)
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

func hashArgon2id(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

func verifyArgon2id(password, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, ErrInvalidHash
	}

	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return false, ErrInvalidHash
	}

	var (
		mem, timeCost uint32
		threads       uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &timeCost, &threads); err != nil {
		return false, ErrInvalidHash
	}
	if timeCost < 1 || timeCost > argonMaxTime || threads < 1 ||
		mem < argonMinMemory || mem > argonMaxMemory {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > argonMaxKeyLen {
		return false, ErrInvalidHash
	}

	actual := argon2.IDKey([]byte(password), salt, timeCost, mem, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

// String describes the configured scheme, e.g. "bcrypt(cost=10)".
func (h *Hasher) String() string {
	if h.algorithm == AlgorithmBcrypt {
		return AlgorithmBcrypt + "(cost=" + strconv.Itoa(h.bcryptCost) + ")"
	}
	return h.algorithm
}
