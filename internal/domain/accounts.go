package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ImageKind selects which account image GetImage returns.
type ImageKind string

const (
	ImageProfile    ImageKind = "PROFILE"
	ImageBackground ImageKind = "BACKGROUND"
)

// ErrEmailTaken indicates signup with an already-registered email.
var ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrValidation)

// ErrBadCredentials indicates a signin password mismatch.
var ErrBadCredentials = fmt.Errorf("%w: invalid credentials", ErrValidation)

// AccountService owns registration, signin, and profile management.
type AccountService struct {
	accounts  AccountRepository
	tokens    TokenCodec
	guard     Authorizer
	passwords PasswordHasher
	photos    PhotoValidator
	logger    *slog.Logger
}

// NewAccountService creates an AccountService over the given collaborators.
func NewAccountService(accounts AccountRepository, tokens TokenCodec, guard Authorizer, passwords PasswordHasher, photos PhotoValidator, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts:  accounts,
		tokens:    tokens,
		guard:     guard,
		passwords: passwords,
		photos:    photos,
		logger:    logger,
	}
}

// Signup registers a new account. The password must satisfy the policy and
// the email must not already be registered; the credential is stored hashed.
func (s *AccountService) Signup(ctx context.Context, username, email, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	taken, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		s.logger.Error("email lookup failed", "error", err)
		return fmt.Errorf("%w: check email: %w", ErrStoreFailed, err)
	}
	if taken {
		return ErrEmailTaken
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		ProfilePicture:  "default",
		BackgroundImage: "default",
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		s.logger.Error("create account failed", "error", err)
		return fmt.Errorf("%w: create account: %w", ErrStoreFailed, err)
	}
	return nil
}

// Signin authenticates with username and password and returns the safe
// profile plus a freshly issued session token. Unknown username yields
// ErrNotFound; a wrong password yields ErrBadCredentials.
func (s *AccountService) Signin(ctx context.Context, username, password string) (*Profile, string, error) {
	account, err := s.accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		if isDomainErr(err) {
			return nil, "", err
		}
		s.logger.Error("account lookup failed", "error", err)
		return nil, "", fmt.Errorf("%w: get account: %w", ErrStoreFailed, err)
	}

	if err := s.passwords.Compare(account.PasswordHash, password); err != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	profile := account.Profile()
	return &profile, token, nil
}

// SigninWithToken resumes a session from an existing token: the token is
// verified and the bound account's safe profile returned.
func (s *AccountService) SigninWithToken(ctx context.Context, token string) (*Profile, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, subject)
}

// GetProfile returns the safe external view of an account.
func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*Profile, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		s.logger.Error("account lookup failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("%w: get account: %w", ErrStoreFailed, err)
	}
	profile := account.Profile()
	return &profile, nil
}

// UpdateAccount applies a whitelisted profile update to the caller's own
// account. The token must belong to accountID; images pass the photo gate.
func (s *AccountService) UpdateAccount(ctx context.Context, token, accountID string, update AccountUpdate) (*Profile, error) {
	if err := s.guard.Authorize(token, accountID); err != nil {
		return nil, err
	}

	if update.Username != nil {
		if err := ValidateUsername(*update.Username); err != nil {
			return nil, err
		}
	}
	if update.Bio != nil && len([]rune(*update.Bio)) > 60 {
		return nil, fmt.Errorf("%w: bio too long", ErrValidation)
	}
	if update.Info != nil {
		if err := ValidatePhoneNumber(update.Info.PhoneNumber); err != nil {
			return nil, err
		}
	}
	if update.ProfilePicture != nil {
		if err := s.photos.Validate(*update.ProfilePicture); err != nil {
			return nil, err
		}
	}
	if update.BackgroundImage != nil {
		if err := s.photos.Validate(*update.BackgroundImage); err != nil {
			return nil, err
		}
	}

	account, err := s.accounts.UpdateAccount(ctx, accountID, update)
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		s.logger.Error("update account failed", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("%w: update account: %w", ErrStoreFailed, err)
	}
	profile := account.Profile()
	return &profile, nil
}

// GetImage returns one of the account's stored images.
func (s *AccountService) GetImage(ctx context.Context, accountID string, kind ImageKind) (string, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		if isDomainErr(err) {
			return "", err
		}
		s.logger.Error("account lookup failed", "account_id", accountID, "error", err)
		return "", fmt.Errorf("%w: get account: %w", ErrStoreFailed, err)
	}

	switch kind {
	case ImageProfile:
		return account.ProfilePicture, nil
	case ImageBackground:
		return account.BackgroundImage, nil
	default:
		return "", fmt.Errorf("%w: unknown image kind %q", ErrValidation, kind)
	}
}
