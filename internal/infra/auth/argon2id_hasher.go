package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"identity/config"
	"identity/internal/domain/service"
	"identity/internal/errors"

	"golang.org/x/crypto/argon2"
)

const (
	argon2SaltLength = 16
	argon2KeyLength  = 32

	// Upper bounds accepted when parsing a stored hash, so a tampered record
	// cannot make a single verification allocate gigabytes.
	argon2MaxMemoryKiB  = 1 << 20
	argon2MaxIterations = 64
)

// Argon2idParams is the Argon2id work factor.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// argon2idHasher encodes hashes in the PHC string format:
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<parallelism>$<salt>$<key>
type argon2idHasher struct {
	params Argon2idParams
}

// NewArgon2idHasher returns an Argon2id hasher; zero parameters fall back to the config defaults.
func NewArgon2idHasher(params Argon2idParams) service.PasswordHasher {
	if params.MemoryKiB == 0 {
		params.MemoryKiB = config.DefaultArgon2MemoryKiB
	}
	if params.Iterations == 0 {
		params.Iterations = config.DefaultArgon2Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = config.DefaultArgon2Parallelism
	}

	return &argon2idHasher{params: params}
}

func (h *argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to generate salt")
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, argon2KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *argon2idHasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false, errors.Wrapf(service.ErrMalformedHash, "argon2id: %v", err)
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.MemoryKiB, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

func decodeArgon2id(encoded string) (Argon2idParams, []byte, []byte, error) {
	var params Argon2idParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, errors.New("unrecognized hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, errors.Wrap(err, "parse version")
	}
	if version != argon2.Version {
		return params, nil, nil, errors.Errorf("unsupported version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, errors.Wrap(err, "parse parameters")
	}
	if params.MemoryKiB == 0 || params.MemoryKiB > argon2MaxMemoryKiB ||
		params.Iterations == 0 || params.Iterations > argon2MaxIterations ||
		params.Parallelism == 0 {
		return params, nil, nil, errors.New("parameters out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, errors.New("invalid salt encoding")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < 16 {
		return params, nil, nil, errors.New("invalid key encoding")
	}

	return params, salt, key, nil
}
