package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/samirrijal/fleetview/internal/pkg/config"
)

const subjectKey ctxKey = "subject"

// errForbiddenOwner is returned when a token subject asks for another
// owner's fleet.
var errForbiddenOwner = errors.New("token subject does not own this fleet")

// AuthMiddleware verifies HS256 bearer tokens. The subject is the owner ID;
// it is stored in c.Locals("user_id") for WebSocket handlers and in the user
// context for everything else. An empty secret disables the check.
func AuthMiddleware(cfg config.AuthConfig) fiber.Handler {
	if cfg.JWTSecret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(cfg.JWTSecret)

	return func(c *fiber.Ctx) error {
		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return errUnauthorized(c, "missing bearer token")
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}); err != nil {
			return errUnauthorized(c, "invalid token")
		}
		if claims.Subject == "" {
			return errUnauthorized(c, "token has no subject")
		}

		c.Locals("user_id", claims.Subject)
		c.SetUserContext(context.WithValue(c.UserContext(), subjectKey, claims.Subject))
		return c.Next()
	}
}

// SubjectFromCtx returns the authenticated owner ID, or "" when auth is
// disabled.
func SubjectFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}

// checkOwner rejects callers whose token names a different owner.
func checkOwner(ctx context.Context, ownerID string) error {
	if sub := SubjectFromCtx(ctx); sub != "" && sub != ownerID {
		return errForbiddenOwner
	}
	return nil
}
