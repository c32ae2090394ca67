package auth

import (
	"identity/config"
	"identity/internal/domain/service"
	"identity/internal/errors"
)

// NewPasswordHasher selects the hasher named by auth.hasher.
func NewPasswordHasher(cfg *config.Config) (service.PasswordHasher, error) {
	if cfg.Auth == nil {
		return NewBcryptHasher(), nil
	}

	switch cfg.Auth.Hasher {
	case config.HasherBcrypt, "":
		return NewBcryptHasherWithCost(cfg.Auth.BcryptCost), nil
	case config.HasherArgon2id:
		return NewArgon2idHasher(Argon2idParams{
			MemoryKiB:   cfg.Auth.Argon2id.MemoryKiB,
			Iterations:  cfg.Auth.Argon2id.Iterations,
			Parallelism: cfg.Auth.Argon2id.Parallelism,
		}), nil
	default:
		return nil, errors.Errorf("unknown password hasher: %s", cfg.Auth.Hasher)
	}
}
