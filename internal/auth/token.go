package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiry is how long an issued token stays valid
const DefaultTokenExpiry = 24 * time.Hour

// ErrInvalidToken is returned for any token that fails verification.
// Expired and malformed tokens are wrapped distinctly but callers treat
// them the same.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the verified contents of a token
type Claims struct {
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed bearer tokens. Tokens are
// stateless: verification needs only the signing secret, and a token cannot
// be revoked before it expires.
type TokenService struct {
	secret string
	expiry time.Duration
}

// NewTokenService creates a new token service. A zero expiry falls back to
// the 24 hour default.
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	if expiry == 0 {
		expiry = DefaultTokenExpiry
	}
	return &TokenService{
		secret: secret,
		expiry: expiry,
	}
}

// Issue produces a signed token for the given username
func (ts *TokenService) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(ts.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ts.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks a token's signature and expiry and returns its claims
func (ts *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	username, ok := mapClaims["sub"].(string)
	if !ok || username == "" {
		return nil, ErrInvalidToken
	}

	// JWT claims decode numbers as float64
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	return &Claims{
		Username:  username,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
