package auth

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 10

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword validates a password against a stored bcrypt hash.
func CheckPassword(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// ValidatePassword enforces the signup password policy: minimum length plus
// upper case, lower case, digit and special characters.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 10 characters")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper {
		return errors.New("password must contain an upper case letter")
	}
	if !lower {
		return errors.New("password must contain a lower case letter")
	}
	if !digit {
		return errors.New("password must contain a digit")
	}
	if !special {
		return errors.New("password must contain a special character")
	}
	return nil
}
