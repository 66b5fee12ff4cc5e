package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

// Authentication outcomes. Callers on the login path collapse all three into
// one "invalid credentials" response; the distinction exists for logging and
// tests.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrAccountDeactivated = errors.New("account deactivated")
)

// dummyHash keeps the failed-lookup path doing the same Argon2id work as a
// real verification so response timing does not depend on username existence.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$QUFBQUFBQUFBQUFBQUFBQQ$QUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUE"

// Service exposes account management operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AccountDTO, error)
	Authenticate(ctx context.Context, username, password string) (*models.Account, error)
	GetProfile(ctx context.Context, accountID int64) (*AccountDTO, error)
	UpdateProfile(ctx context.Context, accountID int64, input UpdateProfileInput) (*AccountDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo        *Repository
	dbClient    txRunner
	passwordCfg config.PasswordConfig
}

// NewService constructs the account service.
func NewService(repo *Repository, dbClient txRunner, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, passwordCfg: passwordCfg}, nil
}

// Register creates a new account with a freshly hashed password. Duplicate
// usernames and emails surface as conflicts, decided by the unique indexes so
// two concurrent registrations cannot both win.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AccountDTO, error) {
	username := strings.TrimSpace(input.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		IsActive:     true,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, account)
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, "username"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		case db.IsUniqueViolation(err, "email"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating account")
		}
	}

	return toAccountDTO(account, 0), nil
}

// Authenticate checks the credentials and returns the account on success.
// Failures come back as one of the package sentinels.
func (s *service) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// burn the same hashing cost as a real check
			_, _ = security.VerifyPassword(password, dummyHash)
			return nil, ErrAccountNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil && !errors.Is(err, security.ErrInvalidHash) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, ErrWrongPassword
	}
	if !account.IsActive {
		return nil, ErrAccountDeactivated
	}

	return account, nil
}

// GetProfile returns the caller's account projection.
func (s *service) GetProfile(ctx context.Context, accountID int64) (*AccountDTO, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	total, err := s.repo.CountProductsByOwner(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting products")
	}

	return toAccountDTO(account, total), nil
}

// UpdateProfile mutates the caller's email and/or password inside one
// transaction. Email uniqueness excludes the caller's own row so re-submitting
// the current address is a no-op, not a conflict.
func (s *service) UpdateProfile(ctx context.Context, accountID int64, input UpdateProfileInput) (*AccountDTO, error) {
	if input.Email == nil && input.Password == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *models.Account
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		account, err := repo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
		}
		if !account.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "account is deactivated")
		}

		if input.Email != nil {
			email, err := normalizeEmail(input.Email)
			if err != nil {
				return err
			}
			if email != nil {
				taken, err := repo.EmailTaken(ctx, *email, accountID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
				}
				if taken {
					return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
				}
			}
			account.Email = email
		}

		if input.Password != nil {
			if err := validatePassword(*input.Password); err != nil {
				return err
			}
			hash, err := security.HashPassword(*input.Password, s.passwordCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
			}
			account.PasswordHash = hash
		}

		if err := repo.Save(ctx, account); err != nil {
			if db.IsUniqueViolation(err, "email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving account")
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountProductsByOwner(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting products")
	}

	return toAccountDTO(updated, total), nil
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 3 characters").
			WithDetails(map[string]any{"field": "username"})
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters").
			WithDetails(map[string]any{"field": "password"})
	}
	return nil
}

// normalizeEmail trims the address and returns nil for an empty value so the
// partial unique index never sees blank strings.
func normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil, nil
	}
	if !strings.Contains(trimmed, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email must contain @").
			WithDetails(map[string]any{"field": "email"})
	}
	return &trimmed, nil
}
