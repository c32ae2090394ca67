package handler

import (
	"log/slog"
	"net/http"

	"identity/internal/delivery/http/response"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const defaultPageSize = 20

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// AccountHandler serves the signup, login and /users endpoints.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// Signup handles POST /auth/signup.
func (h *AccountHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.accountUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, &AuthResponse{
		Token: out.Token,
		User:  toUserResponse(out.Account),
	}, "Account created")
}

// Login handles POST /auth/login.
func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.accountUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, &AuthResponse{
		Token: out.Token,
		User:  toUserResponse(out.Account),
	}, "Login successful")
}

// Me handles GET /users/me.
func (h *AccountHandler) Me(c echo.Context) error {
	account, err := h.accountUC.Me(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, toUserResponse(account), "")
}

// UpdateMe handles PATCH /users/me.
func (h *AccountHandler) UpdateMe(c echo.Context) error {
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accountUC.UpdateMe(c.Request().Context(), &usecase.UpdateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, toUserResponse(account), "Account updated")
}

// DeleteMe handles DELETE /users/me.
func (h *AccountHandler) DeleteMe(c echo.Context) error {
	deleted, err := h.accountUC.DeleteMe(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, &DeleteUserResponse{Deleted: deleted}, "")
}

// ListUsers handles GET /users?limit=&offset=.
func (h *AccountHandler) ListUsers(c echo.Context) error {
	var req ListUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Limit == 0 {
		req.Limit = defaultPageSize
	}

	accounts, err := h.accountUC.ListAccounts(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, toUserResponses(accounts), "")
}

// GetUser handles GET /users/:id.
func (h *AccountHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("id must be a UUID")
	}

	account, err := h.accountUC.GetAccount(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, toUserResponse(account), "")
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request")
	}

	return c.Validate(req)
}
