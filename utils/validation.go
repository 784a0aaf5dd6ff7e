package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)
	jsEventRegex  = regexp.MustCompile(`on\w+="[^"]*"`)

	xssPatterns = map[string]*regexp.Regexp{
		"Script tag found":              regexp.MustCompile(`(?i)<script.*>`),
		"JavaScript protocol found":     regexp.MustCompile(`(?i)javascript:`),
		"Event handler attribute found": regexp.MustCompile(`(?i)on(load|error|click)=`),
		"document access found":         regexp.MustCompile(`(?i)document\.(cookie|write)`),
	}
)

// SanitizeString removes HTML tags and inline event handlers
func SanitizeString(input string) string {
	sanitized := htmlTagRegex.ReplaceAllString(input, "")
	sanitized = jsEventRegex.ReplaceAllString(sanitized, "")
	return strings.TrimSpace(html.UnescapeString(sanitized))
}

// ValidateXSS checks for common XSS attack patterns
func ValidateXSS(input string) (bool, string) {
	for message, pattern := range xssPatterns {
		if pattern.MatchString(input) {
			return false, "XSS detected: " + message
		}
	}
	return true, ""
}

// ValidateUsername checks if the username meets the requirements and is safe
func ValidateUsername(username string) (bool, string) {
	if valid, msg := ValidateXSS(username); !valid {
		return false, "Username: " + msg
	}
	if len(username) < 3 {
		return false, "Username must be at least 3 characters long"
	}
	if len(username) > 20 {
		return false, "Username must not exceed 20 characters"
	}
	if !usernameRegex.MatchString(username) {
		return false, "Username can only contain letters, numbers, and underscores"
	}
	return true, ""
}

// ValidatePassword checks the password length. bcrypt ignores bytes past 72.
func ValidatePassword(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return false, fmt.Sprintf("Password must not exceed %d characters", MaxPasswordLength)
	}
	return true, ""
}

// ValidateStringLength validates string length
func ValidateStringLength(str string, min, max int) error {
	length := len(strings.TrimSpace(str))
	if length < min {
		return fmt.Errorf("must be at least %d characters long", min)
	}
	if length > max {
		return fmt.Errorf("must not exceed %d characters", max)
	}
	return nil
}

// ValidatePrice validates a menu price
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("price must be greater than 0")
	}
	return nil
}
