package impl

import (
	"context"
	"testing"
	"time"

	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/domain/service"
	"identity/internal/infra/metrics"
	mockRepo "identity/internal/mocks/repository"
	mockSvc "identity/internal/mocks/service"
	"identity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register_Success(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "a@example.com", PasswordHash: "hashed"}

	f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(nil, repository.ErrAccountNotFound)
	f.hasher.EXPECT().Hash("secret-pw").Return("hashed", nil)
	f.repo.EXPECT().Create(ctx, "a@example.com", "hashed").Return(account, nil)
	f.tokens.EXPECT().
		Issue(account.ID, map[string]any{service.ClaimEmail: "a@example.com"}, time.Duration(0)).
		Return("signed-token", nil)

	out, err := f.service.Register(ctx, &usecase.RegisterInput{Email: "  A@Example.com ", Password: "secret-pw"})

	require.NoError(t, err)
	assert.Equal(t, "signed-token", out.Token)
	assert.Equal(t, account, out.Account)
}

func TestAccountService_Register_AllowedWhenAuthenticated(t *testing.T) {
	f := createTestAccountService(t)

	ctx := authenticatedContext(uuid.New(), "someone@example.com")
	account := &entity.Account{ID: uuid.New(), Email: "new@example.com"}

	f.repo.EXPECT().FindByEmail(ctx, "new@example.com").Return(nil, repository.ErrAccountNotFound)
	f.hasher.EXPECT().Hash("pw").Return("hashed", nil)
	f.repo.EXPECT().Create(ctx, "new@example.com", "hashed").Return(account, nil)
	f.tokens.EXPECT().Issue(account.ID, mock.Anything, time.Duration(0)).Return("t", nil)

	_, err := f.service.Register(ctx, &usecase.RegisterInput{Email: "new@example.com", Password: "pw"})
	assert.NoError(t, err)
}

func TestAccountService_Register_Errors(t *testing.T) {
	t.Run("existing email", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(&entity.Account{ID: uuid.New()}, nil)

		out, err := f.service.Register(ctx, &usecase.RegisterInput{Email: "a@example.com", Password: "pw"})
		assert.Nil(t, out)
		assert.ErrorIs(t, err, domainerrors.ErrAccountExists)
	})

	t.Run("lost creation race", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(nil, repository.ErrAccountNotFound)
		f.hasher.EXPECT().Hash("pw").Return("hashed", nil)
		f.repo.EXPECT().Create(ctx, "a@example.com", "hashed").Return(nil, errors.WithStack(repository.ErrDuplicateEmail))

		_, err := f.service.Register(ctx, &usecase.RegisterInput{Email: "a@example.com", Password: "pw"})
		assert.ErrorIs(t, err, domainerrors.ErrAccountExists)
	})

	t.Run("password too long for hasher", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(nil, repository.ErrAccountNotFound)
		f.hasher.EXPECT().Hash(mock.Anything).Return("", service.ErrPasswordTooLong)

		_, err := f.service.Register(ctx, &usecase.RegisterInput{Email: "a@example.com", Password: "pw"})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := createTestAccountService(t)

		_, err := f.service.Register(context.Background(), &usecase.RegisterInput{Email: "   ", Password: "pw"})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

		_, err = f.service.Register(context.Background(), &usecase.RegisterInput{Email: "a@example.com"})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("store failure stays internal", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(nil, errors.New("connection refused"))

		_, err := f.service.Register(ctx, &usecase.RegisterInput{Email: "a@example.com", Password: "pw"})
		require.Error(t, err)

		var appErr domainerrors.AppError
		assert.False(t, errors.As(err, &appErr))
	})
}

func TestAccountService_Login(t *testing.T) {
	account := &entity.Account{ID: uuid.New(), Email: "a@example.com", PasswordHash: "stored-hash"}

	t.Run("success", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(account, nil)
		f.hasher.EXPECT().Verify("pw", "stored-hash").Return(true, nil)
		f.tokens.EXPECT().
			Issue(account.ID, map[string]any{service.ClaimEmail: "a@example.com"}, time.Duration(0)).
			Return("signed-token", nil)

		out, err := f.service.Login(ctx, &usecase.LoginInput{Email: "A@example.com", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "signed-token", out.Token)
		assert.Equal(t, account.ID, out.Account.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(account, nil)
		f.hasher.EXPECT().Verify("wrong", "stored-hash").Return(false, nil)

		_, err := f.service.Login(ctx, &usecase.LoginInput{Email: "a@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("unknown email still verifies against a dummy hash", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "nope@example.com").Return(nil, repository.ErrAccountNotFound)
		f.hasher.EXPECT().Verify("pw", "dummy-hash").Return(false, nil).Once()

		_, err := f.service.Login(ctx, &usecase.LoginInput{Email: "nope@example.com", Password: "pw"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("corrupt stored hash surfaces as invalid credentials", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := context.Background()

		f.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(account, nil)
		f.hasher.EXPECT().Verify("pw", "stored-hash").Return(false, service.ErrMalformedHash)

		_, err := f.service.Login(ctx, &usecase.LoginInput{Email: "a@example.com", Password: "pw"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, service.ErrMalformedHash)
	})
}

func TestAccountService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := &entity.Account{ID: uuid.New(), Email: "a@x.com", PasswordHash: "stored-hash"}

	f.repo.EXPECT().FindByEmail(ctx, "a@x.com").Return(account, nil)
	f.hasher.EXPECT().Verify("wrong", "stored-hash").Return(false, nil)
	f.repo.EXPECT().FindByEmail(ctx, "nope@x.com").Return(nil, repository.ErrAccountNotFound)
	f.hasher.EXPECT().Verify("pw", "dummy-hash").Return(false, nil)

	_, wrongPassword := f.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "wrong"})
	_, unknownEmail := f.service.Login(ctx, &usecase.LoginInput{Email: "nope@x.com", Password: "pw"})

	var first, second domainerrors.AppError
	require.True(t, errors.As(wrongPassword, &first))
	require.True(t, errors.As(unknownEmail, &second))
	assert.Equal(t, first.ErrorCode(), second.ErrorCode())
	assert.Equal(t, first.Message(), second.Message())
	assert.Equal(t, first.HTTPCode(), second.HTTPCode())
}

func TestAccountService_Me(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		f := createTestAccountService(t)

		_, err := f.service.Me(context.Background())
		assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
	})

	t.Run("authenticated", func(t *testing.T) {
		f := createTestAccountService(t)
		id := uuid.New()
		ctx := authenticatedContext(id, "a@example.com")

		f.repo.EXPECT().FindByID(ctx, id).Return(&entity.Account{ID: id, Email: "a@example.com"}, nil)

		account, err := f.service.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
	})

	t.Run("account deleted after token issuance", func(t *testing.T) {
		f := createTestAccountService(t)
		id := uuid.New()
		ctx := authenticatedContext(id, "a@example.com")

		f.repo.EXPECT().FindByID(ctx, id).Return(nil, repository.ErrAccountNotFound)

		_, err := f.service.Me(ctx)
		assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
	})
}

func TestAccountService_UpdateMe(t *testing.T) {
	id := uuid.New()

	t.Run("anonymous", func(t *testing.T) {
		f := createTestAccountService(t)

		_, err := f.service.UpdateMe(context.Background(), &usecase.UpdateInput{Email: ptr("b@example.com")})
		assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
	})

	t.Run("password is hashed before it reaches the store", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(id, "a@example.com")
		updated := &entity.Account{ID: id, Email: "b@example.com", PasswordHash: "new-hash"}

		f.hasher.EXPECT().Hash("new-pw").Return("new-hash", nil)
		f.repo.EXPECT().
			UpdateByID(ctx, id, entity.AccountUpdate{Email: ptr("b@example.com"), PasswordHash: ptr("new-hash")}).
			Return(updated, nil)

		account, err := f.service.UpdateMe(ctx, &usecase.UpdateInput{Email: ptr(" B@example.com"), Password: ptr("new-pw")})
		require.NoError(t, err)
		assert.Equal(t, updated, account)
	})

	t.Run("email taken", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(id, "a@example.com")

		f.repo.EXPECT().UpdateByID(ctx, id, mock.Anything).Return(nil, repository.ErrDuplicateEmail)

		_, err := f.service.UpdateMe(ctx, &usecase.UpdateInput{Email: ptr("taken@example.com")})
		assert.ErrorIs(t, err, domainerrors.ErrAccountExists)
	})

	t.Run("account gone", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(id, "a@example.com")

		f.repo.EXPECT().UpdateByID(ctx, id, mock.Anything).Return(nil, repository.ErrAccountNotFound)

		_, err := f.service.UpdateMe(ctx, &usecase.UpdateInput{Email: ptr("b@example.com")})
		assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
	})

	t.Run("empty fields are rejected", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(id, "a@example.com")

		_, err := f.service.UpdateMe(ctx, &usecase.UpdateInput{Email: ptr("  ")})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

		_, err = f.service.UpdateMe(ctx, &usecase.UpdateInput{Password: ptr("")})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("no fields returns current account", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(id, "a@example.com")
		current := &entity.Account{ID: id, Email: "a@example.com"}

		f.repo.EXPECT().UpdateByID(ctx, id, entity.AccountUpdate{}).Return(current, nil)

		account, err := f.service.UpdateMe(ctx, &usecase.UpdateInput{})
		require.NoError(t, err)
		assert.Equal(t, current, account)
	})
}

func TestAccountService_DeleteMe(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		f := createTestAccountService(t)

		deleted, err := f.service.DeleteMe(context.Background())
		assert.False(t, deleted)
		assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
	})

	t.Run("reports whether a record was removed", func(t *testing.T) {
		f := createTestAccountService(t)
		id := uuid.New()
		ctx := authenticatedContext(id, "a@example.com")

		f.repo.EXPECT().DeleteByID(ctx, id).Return(true, nil).Once()
		f.repo.EXPECT().DeleteByID(ctx, id).Return(false, nil).Once()

		deleted, err := f.service.DeleteMe(ctx)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = f.service.DeleteMe(ctx)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestAccountService_Queries(t *testing.T) {
	t.Run("list requires authentication", func(t *testing.T) {
		f := createTestAccountService(t)

		_, err := f.service.ListAccounts(context.Background(), 10, 0)
		assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
	})

	t.Run("list validates paging", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(uuid.New(), "a@example.com")

		_, err := f.service.ListAccounts(ctx, 0, 0)
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

		_, err = f.service.ListAccounts(ctx, 10, -1)
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("list pages through the store", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(uuid.New(), "a@example.com")
		page := []*entity.Account{{ID: uuid.New(), Email: "x@example.com"}}

		f.repo.EXPECT().List(ctx, 5, 10).Return(page, nil)

		accounts, err := f.service.ListAccounts(ctx, 5, 10)
		require.NoError(t, err)
		assert.Equal(t, page, accounts)
	})

	t.Run("get by id", func(t *testing.T) {
		f := createTestAccountService(t)
		ctx := authenticatedContext(uuid.New(), "a@example.com")
		target := uuid.New()

		f.repo.EXPECT().FindByID(ctx, target).Return(nil, repository.ErrAccountNotFound)

		_, err := f.service.GetAccount(ctx, target)
		assert.ErrorIs(t, err, domainerrors.ErrAccountNotFound)
	})
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: metrics.OutcomeSuccess},
		{err: domainerrors.ErrInvalidCredentials.WrapMessage("login failed"), want: metrics.OutcomeInvalidCredentials},
		{err: domainerrors.ErrAccountExists.WrapMessage("register failed"), want: metrics.OutcomeAccountExists},
		{err: domainerrors.ErrNotAuthenticated, want: metrics.OutcomeNotAuthenticated},
		{err: domainerrors.ErrAccountNotFound, want: metrics.OutcomeNotFound},
		{err: errors.New("boom"), want: metrics.OutcomeError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, outcomeOf(tt.err))
	}
}

func TestNewAccountService_DummyHashFailure(t *testing.T) {
	hasher := mockSvc.NewMockPasswordHasher(t)
	hasher.EXPECT().Hash(dummyPassword).Return("", errors.New("hasher unavailable")).Once()

	svc, err := NewAccountService(AccountServiceParams{
		AccountRepo:  mockRepo.NewMockAccountRepository(t),
		Hasher:       hasher,
		TokenService: mockSvc.NewMockTokenService(t),
		Logger:       newDiscardLogger(),
	})

	require.Error(t, err)
	assert.Nil(t, svc)
}
