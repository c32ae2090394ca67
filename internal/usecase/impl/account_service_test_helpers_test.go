package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	deliverycontext "identity/internal/delivery/context"
	"identity/internal/domain/entity"
	mockRepo "identity/internal/mocks/repository"
	mockSvc "identity/internal/mocks/service"
	"identity/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type accountServiceFixture struct {
	service usecase.AccountUsecase
	repo    *mockRepo.MockAccountRepository
	hasher  *mockSvc.MockPasswordHasher
	tokens  *mockSvc.MockTokenService
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestAccountService(t *testing.T) *accountServiceFixture {
	t.Helper()

	repo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokens := mockSvc.NewMockTokenService(t)

	hasher.EXPECT().Hash(dummyPassword).Return("dummy-hash", nil).Once()
	svc, err := NewAccountService(AccountServiceParams{
		AccountRepo:  repo,
		Hasher:       hasher,
		TokenService: tokens,
		Logger:       newDiscardLogger(),
	})
	require.NoError(t, err)

	return &accountServiceFixture{
		service: svc,
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
	}
}

func authenticatedContext(id uuid.UUID, email string) context.Context {
	return deliverycontext.WithAuth(context.Background(), entity.Authenticated(id, email))
}

func ptr[T any](v T) *T {
	return &v
}
