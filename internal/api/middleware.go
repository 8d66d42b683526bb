package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const contextUserIDKey = "current_user_id"

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	userID, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	c.Locals(contextUserIDKey, userID)
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (uuid.UUID, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, rawToken, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(rawToken) == "" {
		return uuid.Nil, errMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(rawToken), claims, func(*jwt.Token) (interface{}, error) {
		return handler.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(handler.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errInvalidToken
	}
	return userID, nil
}

func (handler *Handler) RateLimited(c *fiber.Ctx) error {
	if handler.limiter == nil {
		return c.Next()
	}
	userID, ok := currentUserID(c)
	key := requestLimiterKey(c)
	if ok {
		key = userID.String()
	}
	if !handler.limiter.allow(key, handler.now()) {
		return apiError(c, fiber.StatusTooManyRequests, "too many requests")
	}
	return c.Next()
}

func currentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(contextUserIDKey).(uuid.UUID)
	return userID, ok
}
