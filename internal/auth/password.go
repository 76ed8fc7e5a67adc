package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt ignores everything past 72 bytes.
	bcryptMaxPasswordBytes = 72
	minPasswordChars       = 8
)

var ErrPasswordPolicy = errors.New("password policy")

func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("%w: password required", ErrPasswordPolicy)
	}
	if utf8.RuneCountInString(plain) < minPasswordChars {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrPasswordPolicy, minPasswordChars)
	}
	if len(plain) > bcryptMaxPasswordBytes {
		return "", fmt.Errorf("%w: password must be at most %d bytes", ErrPasswordPolicy, bcryptMaxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func IsPasswordValidationError(err error) bool {
	return errors.Is(err, ErrPasswordPolicy)
}

func ComparePasswordHash(hash string, plain string) error {
	if plain == "" {
		return fmt.Errorf("%w: password required", ErrPasswordPolicy)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
