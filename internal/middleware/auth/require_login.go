package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prasetyow/warecash/internal/tokens"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// IdentityKey is where decoded access-token claims are stored on the
	// echo context for downstream handlers.
	IdentityKey = "identity"
)

// Gate verifies the access-token cookie on every request to the /api group
// except the allow-listed public paths. It never refreshes server-side:
// refresh is an explicit client call.
type Gate struct {
	Codec *tokens.Codec

	// Public paths that must stay reachable without a valid access token:
	// login, refresh (access token may already be expired), logout and the
	// public warehouse listing.
	AllowList map[string]bool
}

func NewGate(codec *tokens.Codec) *Gate {
	return &Gate{
		Codec: codec,
		AllowList: map[string]bool{
			"/api/user/login/ldap":    true,
			"/api/user/refresh-token": true,
			"/api/user/logout":        true,
			"/api/warehouse":          true,
		},
	}
}

func (g *Gate) skip(c echo.Context) bool {
	if g.AllowList[c.Path()] {
		// The warehouse listing is public only for reads.
		if c.Path() == "/api/warehouse" && c.Request().Method != http.MethodGet {
			return false
		}
		return true
	}
	return false
}

func (g *Gate) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if g.skip(c) {
			return next(c)
		}

		cookie, err := c.Cookie(AccessCookie)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		claims, err := g.Codec.Verify(cookie.Value, tokens.KindAccess)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "access token invalid or expired")
		}

		c.Set(IdentityKey, claims)
		return next(c)
	}
}

// Identity returns the claims attached by RequireLogin, or nil on
// allow-listed routes.
func Identity(c echo.Context) *tokens.Claims {
	if v, ok := c.Get(IdentityKey).(*tokens.Claims); ok {
		return v
	}
	return nil
}
