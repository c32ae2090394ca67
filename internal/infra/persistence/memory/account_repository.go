// Package memory provides a process-local account store for development runs and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"identity/internal/domain/entity"
	"identity/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// accountRepository keeps accounts in maps guarded by a single RWMutex.
// Every mutation checks and updates the email index under the write lock.
type accountRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entity.Account
	byEmail map[string]uuid.UUID
	order   []uuid.UUID
	now     func() time.Time
}

// NewAccountRepository returns an empty in-memory store.
func NewAccountRepository() repository.AccountRepository {
	return newAccountRepository(time.Now)
}

func newAccountRepository(now func() time.Time) *accountRepository {
	return &accountRepository{
		byID:    make(map[uuid.UUID]*entity.Account),
		byEmail: make(map[string]uuid.UUID),
		now:     now,
	}
}

func (repo *accountRepository) Create(ctx context.Context, email, passwordHash string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate account id")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, exists := repo.byEmail[email]; exists {
		return nil, errors.WithStack(repository.ErrDuplicateEmail)
	}

	now := repo.now().UTC()
	account := &entity.Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	repo.byID[id] = account
	repo.byEmail[email] = id
	repo.order = append(repo.order, id)

	return cloneAccount(account), nil
}

func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	id, ok := repo.byEmail[email]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return cloneAccount(repo.byID[id]), nil
}

func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	account, ok := repo.byID[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return cloneAccount(account), nil
}

func (repo *accountRepository) UpdateByID(ctx context.Context, id uuid.UUID, update entity.AccountUpdate) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	account, ok := repo.byID[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	if update.IsEmpty() {
		return cloneAccount(account), nil
	}

	if update.Email != nil && *update.Email != account.Email {
		if _, taken := repo.byEmail[*update.Email]; taken {
			return nil, errors.WithStack(repository.ErrDuplicateEmail)
		}
		delete(repo.byEmail, account.Email)
		repo.byEmail[*update.Email] = id
		account.Email = *update.Email
	}
	if update.PasswordHash != nil {
		account.PasswordHash = *update.PasswordHash
	}
	account.UpdatedAt = repo.now().UTC()

	return cloneAccount(account), nil
}

func (repo *accountRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.WithStack(err)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	account, ok := repo.byID[id]
	if !ok {
		return false, nil
	}

	delete(repo.byID, id)
	delete(repo.byEmail, account.Email)
	repo.order = slices.DeleteFunc(repo.order, func(existing uuid.UUID) bool {
		return existing == id
	})

	return true, nil
}

// List pages through accounts in creation order. A non-positive limit returns everything after offset.
func (repo *accountRepository) List(ctx context.Context, limit, offset int) ([]*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	offset = max(offset, 0)
	if offset >= len(repo.order) {
		return []*entity.Account{}, nil
	}

	end := len(repo.order)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}

	accounts := make([]*entity.Account, 0, end-offset)
	for _, id := range repo.order[offset:end] {
		accounts = append(accounts, cloneAccount(repo.byID[id]))
	}

	return accounts, nil
}

func cloneAccount(account *entity.Account) *entity.Account {
	if account == nil {
		return nil
	}
	cloned := *account

	return &cloned
}
