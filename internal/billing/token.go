package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrNoEmailClaim indicates a structurally valid token without any
// email-like claim.
var ErrNoEmailClaim = errors.New("token carries no email claim")

// emailClaims are checked in order when resolving a user's identity from
// a token.
var emailClaims = []string{"email", "sub", "username", "user"}

// EmailFromToken extracts an email-like claim from a bearer token WITHOUT
// verifying its signature. This is only suitable for looking up previously
// recorded plan state on the read path; it must never gate a mutating or
// billing operation. Mutations happen exclusively through the verified
// webhook path.
func EmailFromToken(token string) (string, error) {
	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	for _, claim := range emailClaims {
		value, ok := parsed.Get(claim)
		if !ok {
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			return normalizeEmail(s), nil
		}
	}
	return "", ErrNoEmailClaim
}
