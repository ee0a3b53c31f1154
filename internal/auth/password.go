package auth

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately above the library default to slow brute force
const bcryptCost = 12

// passwordRegex validates password: at least 8 chars, lowercase, number
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[0-9]`),
}

// ValidatePassword checks a candidate password against the policy:
// minimum 8 characters, at least one lowercase letter, at least one digit.
func ValidatePassword(password string) bool {
	for _, re := range passwordRegex {
		if !re.MatchString(password) {
			return false
		}
	}
	return true
}

// HashPassword produces a bcrypt digest with a fresh per-call salt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a stored digest in constant time
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
