package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

// SessionCookie holds the session token.
const SessionCookie = "token"

const userIDKey = "userID"

// Auth verifies the session cookie and stores the caller's ID in the request locals.
func Auth(tokens *auth.TokenManager) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: tokens.Secret()},
		TokenLookup: "cookie:" + SessionCookie,
		Claims:      &auth.Claims{},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return utils.JSONError(c, fiber.StatusUnauthorized, "User not authenticated")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.UserID == "" {
				return utils.JSONError(c, fiber.StatusUnauthorized, "Invalid token")
			}
			c.Locals(userIDKey, claims.UserID)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return utils.JSONError(c, fiber.StatusUnauthorized, "User not authenticated")
		},
	})
}

// UserID returns the authenticated caller's ID, or "" outside Auth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// UserObjectID returns the caller's ID as an ObjectID.
func UserObjectID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(UserID(c))
	return id, err == nil
}
