package middleware

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader is the request header carrying the shared secret.
const APIKeyHeader = "x-api-key"

const msgUnauthorized = "Unauthorized: Invalid API key"

// APIKey holds the configured secret. Exactly one of Plain or Hash is used;
// Hash (bcrypt) wins when both are set.
type APIKey struct {
	Plain string
	Hash  string
}

// Matches reports whether key equals the configured secret.
func (k APIKey) Matches(key string) bool {
	if key == "" {
		return false
	}
	if k.Hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(k.Hash), []byte(key)) == nil
	}
	if k.Plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(k.Plain), []byte(key)) == 1
}

// Validate returns an error if no secret is configured.
func (k APIKey) Validate() error {
	if k.Plain == "" && k.Hash == "" {
		return errors.New("no API key configured")
	}
	if k.Hash != "" {
		if _, err := bcrypt.Cost([]byte(k.Hash)); err != nil {
			return errors.New("API key hash is not a valid bcrypt hash")
		}
	}
	return nil
}

// APIKeyRequired is a Fiber middleware that rejects requests whose
// x-api-key header does not match key.
func APIKeyRequired(key APIKey) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !key.Matches(c.Get(APIKeyHeader)) {
			return fiber.NewError(fiber.StatusUnauthorized, msgUnauthorized)
		}
		return c.Next()
	}
}
