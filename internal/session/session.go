// Package session resolves the current caller for every authenticated
// operation. Sessions are stateless HS256 bearer tokens.
package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

const TTL = 24 * time.Hour

const contextKeyUserID = "session.userID"

// Issue signs a bearer token for userID, valid for TTL.
func Issue(userID model.UserID, secret string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": string(userID),
		"iat": now.Unix(),
		"exp": now.Add(TTL).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse validates a bearer token and returns the user id it was issued to.
func Parse(tokenString string, secret string) (model.UserID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", model.ErrorUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", model.ErrorUnauthenticated
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", model.ErrorUnauthenticated
	}
	return model.UserID(sub), nil
}

// Middleware extracts the bearer token, validates it and stores the
// caller's user id on the request context.
func Middleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, model.ErrorUnauthenticated.Error())
			}
			userID, err := Parse(tokenString, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, model.ErrorUnauthenticated.Error())
			}
			c.Set(contextKeyUserID, userID)
			return next(c)
		}
	}
}

// CurrentUserID returns the authenticated caller set by Middleware.
func CurrentUserID(c echo.Context) (model.UserID, error) {
	userID, ok := c.Get(contextKeyUserID).(model.UserID)
	if !ok || userID == "" {
		return "", model.ErrorUnauthenticated
	}
	return userID, nil
}
