// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements repository.AccountRepository using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
// It returns the repository as a repository.AccountRepository interface, adhering to dependency inversion.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account. The unique index turns a concurrent duplicate into ErrDuplicateEmail.
func (repo *accountRepository) Create(ctx context.Context, email, passwordHash string) (*entity.Account, error) {
	accountM := &model.AccountModel{
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		return nil, translateWriteError(err, "failed to create account")
	}

	return toAccountDomain(accountM), nil
}

// FindByEmail retrieves a single account by its email address.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var accountM model.AccountModel
	if err := repo.db.WithContext(ctx).Where("email = ?", email).First(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	return toAccountDomain(&accountM), nil
}

// FindByID retrieves a single account by its unique ID.
func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var accountM model.AccountModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by id")
	}

	return toAccountDomain(&accountM), nil
}

// UpdateByID runs a single UPDATE ... RETURNING statement, so the unique index
// arbitrates concurrent email changes and the caller gets the post-update row.
func (repo *accountRepository) UpdateByID(ctx context.Context, id uuid.UUID, update entity.AccountUpdate) (*entity.Account, error) {
	if update.IsEmpty() {
		return repo.FindByID(ctx, id)
	}

	columns := make(map[string]any, 2)
	if update.Email != nil {
		columns["email"] = *update.Email
	}
	if update.PasswordHash != nil {
		columns["password_hash"] = *update.PasswordHash
	}

	var accountM model.AccountModel
	result := repo.db.WithContext(ctx).
		Model(&accountM).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return nil, translateWriteError(result.Error, "failed to update account")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrAccountNotFound
	}

	return toAccountDomain(&accountM), nil
}

// DeleteByID removes the account and reports whether a row was deleted.
func (repo *accountRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AccountModel{})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete account")
	}

	return result.RowsAffected > 0, nil
}

// List returns a page of accounts ordered by creation time.
func (repo *accountRepository) List(ctx context.Context, limit, offset int) ([]*entity.Account, error) {
	var accountModels []*model.AccountModel
	if err := repo.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&accountModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	accounts := make([]*entity.Account, 0, len(accountModels))
	for _, accountM := range accountModels {
		accounts = append(accounts, toAccountDomain(accountM))
	}

	return accounts, nil
}

func translateWriteError(err error, details string) error {
	if isUniqueConstraintViolation(err) {
		return errors.WithStack(repository.ErrDuplicateEmail)
	}
	if isNotNullConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WrapMessage("missing required account information")
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

// --- Mapper Functions ---

// toAccountDomain converts a GORM AccountModel to a domain Account entity.
func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	return &entity.Account{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
