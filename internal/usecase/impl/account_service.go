// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "identity/internal/delivery/context"
	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/domain/service"
	"identity/internal/infra/metrics"
	"identity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	opRegister = "register"
	opLogin    = "login"
	opMe       = "me"
	opUpdate   = "update"
	opDelete   = "delete"
	opList     = "list"
	opGet      = "get"

	// Verified against when the email is unknown so both login failures cost one hash check.
	dummyPassword = "identity-login-timing-equalizer"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	metrics      *metrics.Metrics
	logger       *slog.Logger

	dummyHash string
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Metrics      *metrics.Metrics `optional:"true"`
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
// The dummy login hash is computed here so no login request pays for it.
func NewAccountService(params AccountServiceParams) (usecase.AccountUsecase, error) {
	dummyHash, err := params.Hasher.Hash(dummyPassword)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare dummy password hash")
	}

	return &accountService{
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		metrics:      params.Metrics,
		logger:       params.Logger,
		dummyHash:    dummyHash,
	}, nil
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an account and returns a token bound to it. Authenticated callers may register too.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	output, err := srv.register(ctx, input)
	srv.observe(opRegister, err)

	return output, err
}

func (srv *accountService) register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("email and password are required")
	}

	srv.log(ctx).Debug("Starting registration", slog.String("email", email))

	_, err := srv.accountRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.ErrAccountExists.WrapMessage("register failed")
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, errors.Wrap(err, "failed to find account by email")
	}

	passwordHash, err := srv.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account, err := srv.accountRepo.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domainerrors.ErrAccountExists.WrapMessage("register failed")
		}

		return nil, errors.Wrap(err, "failed to create account")
	}

	token, err := srv.issueToken(account)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Account registered", slog.String("accountID", account.ID.String()))

	return &usecase.AuthOutput{Token: token, Account: account}, nil
}

// Login verifies the credential. Unknown email, wrong password and an unreadable stored
// hash all fail with the same ErrInvalidCredentials.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	output, err := srv.login(ctx, input)
	srv.observe(opLogin, err)

	return output, err
}

func (srv *accountService) login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("email and password are required")
	}

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			srv.spendDummyVerify(input.Password)
			srv.log(ctx).Debug("Login failed", slog.String("reason", "unknown email"))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	ok, err := srv.hasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		corrupt := domainerrors.NewCorruptCredentialError(err)
		srv.metrics.ObserveCorruptCredential()
		srv.log(ctx).Error("Stored credential is unreadable",
			slog.String("accountID", account.ID.String()),
			slog.Any("error", corrupt),
		)

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}
	if !ok {
		srv.log(ctx).Debug("Login failed", slog.String("reason", "password mismatch"))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	token, err := srv.issueToken(account)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Account logged in", slog.String("accountID", account.ID.String()))

	return &usecase.AuthOutput{Token: token, Account: account}, nil
}

// Me returns the caller's account.
func (srv *accountService) Me(ctx context.Context) (*entity.Account, error) {
	account, err := srv.me(ctx)
	srv.observe(opMe, err)

	return account, err
}

func (srv *accountService) me(ctx context.Context) (*entity.Account, error) {
	auth, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	return srv.findAccount(ctx, auth.AccountID)
}

// UpdateMe replaces the caller's email and/or password and returns the account as stored afterwards.
func (srv *accountService) UpdateMe(ctx context.Context, input *usecase.UpdateInput) (*entity.Account, error) {
	account, err := srv.updateMe(ctx, input)
	srv.observe(opUpdate, err)

	return account, err
}

func (srv *accountService) updateMe(ctx context.Context, input *usecase.UpdateInput) (*entity.Account, error) {
	auth, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var update entity.AccountUpdate
	if input.Email != nil {
		email := entity.NormalizeEmail(*input.Email)
		if email == "" {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("email must not be empty")
		}
		update.Email = &email
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("password must not be empty")
		}
		passwordHash, err := srv.hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &passwordHash
	}

	account, err := srv.accountRepo.UpdateByID(ctx, auth.AccountID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("update failed")
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, domainerrors.ErrAccountExists.WrapMessage("update failed")
		default:
			return nil, errors.Wrap(err, "failed to update account")
		}
	}

	srv.log(ctx).Info("Account updated",
		slog.String("accountID", account.ID.String()),
		slog.Bool("emailChanged", update.Email != nil),
		slog.Bool("passwordChanged", update.PasswordHash != nil),
	)

	return account, nil
}

// DeleteMe removes the caller's account and reports whether a record was removed.
func (srv *accountService) DeleteMe(ctx context.Context) (bool, error) {
	deleted, err := srv.deleteMe(ctx)
	srv.observe(opDelete, err)

	return deleted, err
}

func (srv *accountService) deleteMe(ctx context.Context) (bool, error) {
	auth, err := requireAuth(ctx)
	if err != nil {
		return false, err
	}

	deleted, err := srv.accountRepo.DeleteByID(ctx, auth.AccountID)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete account")
	}

	srv.log(ctx).Info("Account deleted", slog.String("accountID", auth.AccountID.String()), slog.Bool("deleted", deleted))

	return deleted, nil
}

// ListAccounts pages through accounts. Requires an authenticated caller.
func (srv *accountService) ListAccounts(ctx context.Context, limit, offset int) ([]*entity.Account, error) {
	accounts, err := srv.listAccounts(ctx, limit, offset)
	srv.observe(opList, err)

	return accounts, err
}

func (srv *accountService) listAccounts(ctx context.Context, limit, offset int) ([]*entity.Account, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || offset < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("limit must be positive and offset non-negative")
	}

	accounts, err := srv.accountRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	return accounts, nil
}

// GetAccount looks up a single account by id. Requires an authenticated caller.
func (srv *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := srv.getAccount(ctx, id)
	srv.observe(opGet, err)

	return account, err
}

func (srv *accountService) getAccount(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}

	return srv.findAccount(ctx, id)
}

func (srv *accountService) findAccount(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("account lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find account by id")
	}

	return account, nil
}

func (srv *accountService) hashPassword(password string) (string, error) {
	passwordHash, err := srv.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, service.ErrPasswordTooLong) {
			return "", domainerrors.ErrValidationFailed.WrapMessage("password is too long")
		}

		return "", errors.Wrap(err, "failed to hash password")
	}

	return passwordHash, nil
}

func (srv *accountService) issueToken(account *entity.Account) (string, error) {
	token, err := srv.tokenService.Issue(account.ID, map[string]any{service.ClaimEmail: account.Email}, 0)
	if err != nil {
		return "", errors.Wrap(err, "failed to issue token")
	}

	return token, nil
}

func (srv *accountService) spendDummyVerify(password string) {
	_, _ = srv.hasher.Verify(password, srv.dummyHash)
}

func (srv *accountService) observe(operation string, err error) {
	srv.metrics.ObserveOperation(operation, outcomeOf(err))
}

func requireAuth(ctx context.Context) (entity.AuthContext, error) {
	auth := deliverycontext.GetAuth(ctx)
	if !auth.IsAuthenticated() {
		return auth, domainerrors.ErrNotAuthenticated.WrapMessage("authentication required")
	}

	return auth, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		return metrics.OutcomeInvalidCredentials
	case errors.Is(err, domainerrors.ErrAccountExists):
		return metrics.OutcomeAccountExists
	case errors.Is(err, domainerrors.ErrNotAuthenticated):
		return metrics.OutcomeNotAuthenticated
	case errors.Is(err, domainerrors.ErrAccountNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
