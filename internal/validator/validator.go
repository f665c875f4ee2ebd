package validator

import (
	"regexp"
	"unicode"
)

const (
	minLoginLen    = 8
	maxLoginLen    = 64
	minPasswordLen = 8
	maxPasswordLen = 72
)

var loginRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// IsValidLogin reports whether login is 8-64 latin letters or digits.
func IsValidLogin(login string) bool {
	if len(login) < minLoginLen || len(login) > maxLoginLen {
		return false
	}

	return loginRe.MatchString(login)
}

// IsValidPassword requires at least two letters of different case, a digit
// and a symbol. The upper bound is what bcrypt accepts.
func IsValidPassword(password string) bool {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return false
	}

	var upper, lower, digit, symbol bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		case unicode.IsSpace(r):
			return false
		}
	}

	return upper && lower && digit && symbol
}
