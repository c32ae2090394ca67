package handler

import (
	"identity/internal/domain/entity"

	"github.com/google/uuid"
)

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /auth/login. No password policy is applied here.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=320"`
	Password string `json:"password" validate:"required,max=128"`
}

// UpdateUserRequest is the body of PATCH /users/me.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=320"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// ListUsersRequest carries the paging query of GET /users.
type ListUsersRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// UserResponse is the only external representation of an account.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// DeleteUserResponse is returned by DELETE /users/me.
type DeleteUserResponse struct {
	Deleted bool `json:"deleted"`
}

func toUserResponse(account *entity.Account) *UserResponse {
	if account == nil {
		return nil
	}

	return &UserResponse{ID: account.ID, Email: account.Email}
}

func toUserResponses(accounts []*entity.Account) []*UserResponse {
	users := make([]*UserResponse, 0, len(accounts))
	for _, account := range accounts {
		users = append(users, toUserResponse(account))
	}

	return users
}
