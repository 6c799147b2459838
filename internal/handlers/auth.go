package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prasetyow/warecash/internal/events"
	"github.com/prasetyow/warecash/internal/logging"
	authmw "github.com/prasetyow/warecash/internal/middleware/auth"
	"github.com/prasetyow/warecash/internal/service"
)

// RefreshPath scopes the refresh cookie so the long-lived token is only ever
// sent to the one endpoint that needs it.
const RefreshPath = "/api/user/refresh-token"

type AuthHandler struct {
	Service  *service.AuthService
	Producer *events.Producer
}

func CreateCookie(name, value, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) LoginLDAP(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body", "")
	}
	if req.Username == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "username and password are required", "")
	}

	ctx := c.Request().Context()
	res, err := h.Service.Login(ctx, req.Username, req.Password, service.RequestMeta{
		OriginIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return failAuth(c, err)
	}

	c.SetCookie(CreateCookie(authmw.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(CreateCookie(authmw.RefreshCookie, res.RefreshToken, RefreshPath, res.RefreshExp))

	h.publish(c, events.TopicAuth, res.User.Username, map[string]interface{}{
		"type":      "user_logged_in",
		"username":  res.User.Username,
		"warehouse": res.Warehouse.Name,
		"role":      res.Role,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"username":     res.User.Username,
		"display_name": res.User.DisplayName,
		"role":         res.Role,
		"warehouse":    res.Warehouse,
	})
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(authmw.RefreshCookie)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "refresh token missing", "")
	}

	pair, err := h.Service.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return failAuth(c, err)
	}

	c.SetCookie(CreateCookie(authmw.AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(CreateCookie(authmw.RefreshCookie, pair.RefreshToken, RefreshPath, pair.RefreshExp))

	return c.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"message":    "token refreshed",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var accessToken string
	if cookie, err := c.Cookie(authmw.AccessCookie); err == nil {
		accessToken = cookie.Value
	}

	if err := h.Service.Logout(c.Request().Context(), accessToken); err != nil {
		return failAuth(c, err)
	}

	c.SetCookie(DeleteCookie(authmw.AccessCookie, "/"))
	c.SetCookie(DeleteCookie(authmw.RefreshCookie, RefreshPath))

	h.publish(c, events.TopicAuth, "", map[string]interface{}{
		"type": "user_logged_out",
	})

	return c.JSON(http.StatusOK, echo.Map{
		"statusCode": http.StatusOK,
		"message":    "logged out",
	})
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]interface{}) {
	if h.Producer == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("kafka publish failed", "topic", topic, "error", err)
	}
}
