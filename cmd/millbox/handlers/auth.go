package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
)

// userKey is where middleware stores the authenticated user name in
// the request context.
const userKey = "millbox.user"

// UserOf reads the authenticated user of a request. Empty before
// RequireToken ran.
func UserOf(c echo.Context) string {
	user, _ := c.Get(userKey).(string)
	return user
}

// TokenHandler implements the OAuth password grant: it checks the
// credentials against the sandbox accounts and issues an HS256-signed
// bearer token.
func TokenHandler(box *sandbox.Sandbox, secret []byte, ttl time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, _, ok := c.Request().BasicAuth(); !ok {
			return apierr.Unauthorized("client authentication is required")
		}
		if grant := c.FormValue("grant_type"); grant != "password" {
			return apierr.BadRequest(
				fmt.Sprintf("unsupported grant_type %q", grant), nil,
			)
		}

		user := c.FormValue("username")
		password := c.FormValue("password")
		if !box.Authenticate(user, password) {
			return apierr.Unauthorized("unknown user or wrong password")
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": user,
			"iat": now.Unix(),
			"exp": now.Add(ttl).Unix(),
		})
		signed, err := token.SignedString(secret)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"access_token": signed,
			"token_type":   "bearer",
			"expires_in":   int(ttl.Seconds()),
		})
	}
}

// RequireToken guards platform endpoints: requests must carry a
// bearer token this emulator issued.
func RequireToken(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(
				c.Request().Header.Get("Authorization"), "Bearer ",
			)
			if !ok {
				return apierr.Unauthorized("a bearer token is required")
			}

			parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !parsed.Valid {
				return apierr.Unauthorized("the token is invalid or expired")
			}

			sub, err := parsed.Claims.GetSubject()
			if err != nil {
				return apierr.Unauthorized("the token carries no subject")
			}
			c.Set(userKey, sub)
			return next(c)
		}
	}
}

// RequireGridAccount guards the per-server grid endpoints, which
// authenticate with the account's own credentials instead of a token.
func RequireGridAccount(box *sandbox.Sandbox) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, password, ok := c.Request().BasicAuth()
			if !ok || !box.Authenticate(user, password) {
				return apierr.Unauthorized("grid endpoints require basic authentication")
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}
