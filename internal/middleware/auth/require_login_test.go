package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/prasetyow/warecash/internal/roles"
	"github.com/prasetyow/warecash/internal/tokens"
)

func newTestCodec(t *testing.T) *tokens.Codec {
	t.Helper()
	c, err := tokens.NewCodec([]byte("access-secret"), []byte("refresh-secret"))
	require.NoError(t, err)
	return c
}

func signedAccess(t *testing.T, c *tokens.Codec) string {
	t.Helper()
	raw, err := c.Sign(tokens.Claims{
		Username:         "alice",
		Description:      roles.RoleSales,
		WarehouseID:      1,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ID: tokens.NewJTI()},
	}, tokens.KindAccess)
	require.NoError(t, err)
	return raw
}

func newCtx(method, path string, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c, rec
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestGateMissingCookie(t *testing.T) {
	gate := NewGate(newTestCodec(t))
	c, _ := newCtx(http.MethodGet, "/api/flowlog")

	err := gate.RequireLogin(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestGateInvalidToken(t *testing.T) {
	gate := NewGate(newTestCodec(t))
	c, _ := newCtx(http.MethodGet, "/api/flowlog", &http.Cookie{Name: AccessCookie, Value: "garbage"})

	err := gate.RequireLogin(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestGateValidTokenAttachesIdentity(t *testing.T) {
	codec := newTestCodec(t)
	gate := NewGate(codec)
	c, _ := newCtx(http.MethodGet, "/api/flowlog", &http.Cookie{Name: AccessCookie, Value: signedAccess(t, codec)})

	require.NoError(t, gate.RequireLogin(okHandler)(c))

	claims := Identity(c)
	require.NotNil(t, claims)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, roles.RoleSales, claims.Description)
}

func TestGateAllowList(t *testing.T) {
	gate := NewGate(newTestCodec(t))

	for _, path := range []string{
		"/api/user/login/ldap",
		"/api/user/refresh-token",
		"/api/user/logout",
	} {
		c, _ := newCtx(http.MethodPost, path)
		require.NoError(t, gate.RequireLogin(okHandler)(c), path)
	}
}

func TestGateWarehousePublicOnlyForReads(t *testing.T) {
	gate := NewGate(newTestCodec(t))

	c, _ := newCtx(http.MethodGet, "/api/warehouse")
	require.NoError(t, gate.RequireLogin(okHandler)(c))

	c, _ = newCtx(http.MethodPost, "/api/warehouse")
	err := gate.RequireLogin(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireRole(t *testing.T) {
	codec := newTestCodec(t)
	gate := NewGate(codec)

	run := func(allowed ...roles.Role) error {
		c, _ := newCtx(http.MethodPost, "/api/budget", &http.Cookie{Name: AccessCookie, Value: signedAccess(t, codec)})
		return gate.RequireLogin(RequireRole(allowed...)(okHandler))(c)
	}

	require.NoError(t, run(roles.RoleSales))
	require.NoError(t, run(roles.RoleAdmin, roles.RoleSales))

	err := run(roles.RoleAdmin)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	c, _ := newCtx(http.MethodPost, "/api/budget")
	err := RequireRole(roles.RoleAdmin)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
