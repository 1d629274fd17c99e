package domain

import (
	"fmt"
	"regexp"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_ -]{3,16}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^\d{9}$`)
)

// Account is a registered user. PasswordHash is the bcrypt hash of the
// credential; the plaintext is never stored.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string

	// ProfilePicture and BackgroundImage are base64-encoded images, or the
	// literal "default" for the built-in placeholder.
	ProfilePicture  string
	BackgroundImage string

	Bio  string
	Info AccountInfo
}

// AccountInfo holds the optional profile detail fields.
type AccountInfo struct {
	PhoneNumber string `json:"phoneNumber"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Workplace   string `json:"workplace"`
	School      string `json:"school"`
}

// Profile is the externally visible subset of an account: no email, no
// credential hash, no image payloads.
type Profile struct {
	ID       string      `json:"_id"`
	Username string      `json:"username"`
	Bio      string      `json:"bio"`
	Info     AccountInfo `json:"info"`
}

// Profile projects the account onto its safe external view.
func (a *Account) Profile() Profile {
	return Profile{
		ID:       a.ID,
		Username: a.Username,
		Bio:      a.Bio,
		Info:     a.Info,
	}
}

// ValidateUsername checks the username shape (3-16 word chars, spaces,
// hyphens).
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: invalid username", ErrValidation)
	}
	return nil
}

// ValidateEmail checks the email shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}

// ValidatePhoneNumber accepts a nine-digit number or the empty string.
func ValidatePhoneNumber(tel string) error {
	if tel != "" && !phonePattern.MatchString(tel) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	return nil
}

// ValidatePassword enforces the registration password policy: at least
// eight characters with at least one letter and one digit, drawn from
// letters, digits, and @$!%*?&.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password too short", ErrValidation)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '@', r == '$', r == '!', r == '%', r == '*', r == '?', r == '&':
		default:
			return fmt.Errorf("%w: password contains a disallowed character", ErrValidation)
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password needs at least one letter and one digit", ErrValidation)
	}
	return nil
}
