package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mwalczyk/socialfeed/internal/domain"
)

// CreateAccount inserts a new account.
func (r *Repository) CreateAccount(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, username, email, password_hash,
			profile_picture, background_image, bio,
			phone_number, country, city, workplace, school
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash,
		a.ProfilePicture, a.BackgroundImage, a.Bio,
		a.Info.PhoneNumber, a.Info.Country, a.Info.City, a.Info.Workplace, a.Info.School,
	)
	return err
}

// GetAccount retrieves an account by id.
func (r *Repository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return r.getAccount(ctx, `id = ?`, id)
}

// GetAccountByUsername retrieves the first account with the username.
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getAccount(ctx, `username = ?`, username)
}

// EmailExists reports whether an account is registered with the email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = ?)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// UpdateAccount applies the non-nil fields and returns the updated account.
func (r *Repository) UpdateAccount(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error) {
	var phone, country, city, workplace, school *string
	if u.Info != nil {
		phone = &u.Info.PhoneNumber
		country = &u.Info.Country
		city = &u.Info.City
		workplace = &u.Info.Workplace
		school = &u.Info.School
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			username         = COALESCE(?, username),
			profile_picture  = COALESCE(?, profile_picture),
			background_image = COALESCE(?, background_image),
			bio              = COALESCE(?, bio),
			phone_number     = COALESCE(?, phone_number),
			country          = COALESCE(?, country),
			city             = COALESCE(?, city),
			workplace        = COALESCE(?, workplace),
			school           = COALESCE(?, school)
		WHERE id = ?`,
		nullable(u.Username), nullable(u.ProfilePicture), nullable(u.BackgroundImage),
		nullable(u.Bio), nullable(phone), nullable(country), nullable(city),
		nullable(workplace), nullable(school), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetAccount(ctx, id)
}

func (r *Repository) getAccount(ctx context.Context, where string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash,
			profile_picture, background_image, bio,
			phone_number, country, city, workplace, school
		FROM accounts WHERE `+where+` LIMIT 1`, arg,
	).Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash,
		&a.ProfilePicture, &a.BackgroundImage, &a.Bio,
		&a.Info.PhoneNumber, &a.Info.Country, &a.Info.City, &a.Info.Workplace, &a.Info.School,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}
	return &a, nil
}
