// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"identity/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput defines the credential presented at login.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateInput carries the self-update fields. Nil fields are left untouched.
type UpdateInput struct {
	Email    *string
	Password *string
}

// --- Output DTOs ---

// AuthOutput is returned by register and login.
type AuthOutput struct {
	Token   string
	Account *entity.Account
}

// AccountUsecase defines the identity operations.
// The caller's identity is read from the context (see deliverycontext.GetAuth).
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	Me(ctx context.Context) (*entity.Account, error)
	UpdateMe(ctx context.Context, input *UpdateInput) (*entity.Account, error)
	DeleteMe(ctx context.Context) (bool, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*entity.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*entity.Account, error)
}
