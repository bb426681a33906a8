package session

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avdeenkov/shopsync/internal/common"
)

// StripBearer removes a leading "Bearer " scheme if present. Tokens arrive
// with the prefix from some callers and without it from others; storage
// always holds the bare token.
func StripBearer(token string) string {
	if len(token) >= len(common.BearerPrefix) &&
		strings.EqualFold(token[:len(common.BearerPrefix)], common.BearerPrefix) {
		return strings.TrimSpace(token[len(common.BearerPrefix):])
	}
	return token
}

// ValidateToken checks the credential's structure: three dot-separated,
// base64url-decodable segments. The signature is never verified here; only
// the server can do that. Structure is enough to reject the corruption this
// guards against (truncated writes, foreign values in the slot).
func ValidateToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", common.ErrInvalidToken)
	}
	if strings.Count(token, ".") != 2 {
		return fmt.Errorf("%w: want three segments", common.ErrInvalidToken)
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{}); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return nil
}
