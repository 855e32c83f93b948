// internal/core/validation.go
package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Regular expression for valid table/column names (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// IsValidIdentifier checks if a string is a valid SQL identifier (table or column name).
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// commonPasswords is a short deny-list of the most frequently leaked passwords.
var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "12345678": true,
	"123456789": true, "1234567890": true, "qwerty123": true, "qwertyuiop": true,
	"iloveyou": true, "sunshine": true, "princess": true, "football": true,
	"baseball": true, "welcome1": true, "letmein1": true, "admin123": true,
	"abc12345": true, "trustno1": true, "passw0rd": true, "11111111": true,
}

// PasswordPolicy mirrors the password validators applied on signup.
type PasswordPolicy struct {
	MinLength int
}

// Validate returns every rule the password breaks; nil means it is acceptable.
// email is used for the similarity check.
func (p PasswordPolicy) Validate(password, email string) []string {
	var problems []string

	if similarToEmail(password, email) {
		problems = append(problems, "The password is too similar to the email address.")
	}
	if len([]rune(password)) < p.MinLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if commonPasswords[strings.ToLower(password)] {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

// similarToEmail flags passwords containing the email's local part (or vice
// versa) once both are at least three characters long.
func similarToEmail(password, email string) bool {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	pw := strings.ToLower(password)
	if len(local) < 3 || len(pw) < 3 {
		return false
	}
	return strings.Contains(pw, local) || strings.Contains(local, pw)
}
