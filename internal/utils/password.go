package utils

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

var (
	ErrPasswordTooShort = errors.New("This password is too short. It must contain at least 8 characters.")
	ErrPasswordNumeric  = errors.New("This password is entirely numeric.")
	ErrPasswordCommon   = errors.New("This password is too common.")
)

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "12345678": true, "123456789": true,
	"qwertyui": true, "qwerty123": true, "iloveyou": true, "11111111": true,
	"abc12345": true, "letmein1": true, "welcome1": true, "passw0rd": true,
}

// CheckPasswordStrength returns every rule plain breaks.
func CheckPasswordStrength(plain string) []error {
	var errs []error
	if len([]rune(plain)) < MinPasswordLength {
		errs = append(errs, ErrPasswordTooShort)
	}
	if plain != "" && strings.IndexFunc(plain, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		errs = append(errs, ErrPasswordNumeric)
	}
	if commonPasswords[strings.ToLower(plain)] {
		errs = append(errs, ErrPasswordCommon)
	}
	return errs
}

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
