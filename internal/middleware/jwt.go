package middleware

import (
	"fmt"
	"strings"
	"time"

	"dinepos/internal/common"
	"dinepos/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// OutletHeader lets OWNER and ADMIN act on an outlet other than the one in their token.
const OutletHeader = "X-Outlet-ID"

// JWTCustomClaims are the claims issued by the auth service. The user id is the subject.
type JWTCustomClaims struct {
	OutletID string `json:"outlet_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig verifies HS256 tokens with secret, or tokens signed by a JWKS when keyFunc is set.
func JWTConfig(secret string, keyFunc jwt.Keyfunc) echojwt.Config {
	cfg := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logrus.WithError(err).Debug("rejected bearer token")
			return common.SendUnauthorizedError(c)
		},
	}
	if keyFunc != nil {
		cfg.KeyFunc = keyFunc
	} else {
		cfg.SigningKey = []byte(secret)
	}
	return cfg
}

// NewJWKS fetches the key set at url and refreshes it in the background.
// Callers stop the refresh with EndBackground.
func NewJWKS(url string) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logrus.WithError(err).WithField("jwks_url", url).Warn("failed to refresh JWKS")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	return jwks, nil
}

// ParseJWTPayload turns verified claims into ids. Unknown roles are rejected.
func ParseJWTPayload(claims *JWTCustomClaims) (uuid.UUID, uuid.UUID, models.Role, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("invalid sub claim: %w", err)
	}
	outletID, err := uuid.Parse(claims.OutletID)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("invalid outlet_id claim: %w", err)
	}
	role := models.Role(strings.ToUpper(claims.Role))
	if !role.Valid() {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("unknown role %q", claims.Role)
	}
	return userID, outletID, role, nil
}

// Identity must run after the echo-jwt middleware. It stores user, outlet and role on the
// request context and applies the outlet header for roles allowed to switch outlets.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			userID, outletID, role, err := ParseJWTPayload(claims)
			if err != nil {
				logrus.WithError(err).Debug("invalid token claims")
				return common.SendUnauthorizedError(c)
			}

			if header := c.Request().Header.Get(OutletHeader); header != "" {
				requested, err := common.ValidateUUID(header, OutletHeader)
				if err != nil {
					return common.SendValidationError(c, OutletHeader, err.Error())
				}
				if requested != outletID {
					if !role.CanSwitchOutlet() {
						return common.SendForbiddenError(c, "Role cannot act on another outlet")
					}
					outletID = requested
				}
			}

			ctx := common.WithIdentity(c.Request().Context(), userID, outletID, role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
