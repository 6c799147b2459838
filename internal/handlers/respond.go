package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prasetyow/warecash/internal/service"
)

// ErrorBody is the structured failure shape for every endpoint: the HTTP
// status mirrored in the body plus a human-readable message.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

func fail(c echo.Context, code int, message, detail string) error {
	return c.JSON(code, ErrorBody{StatusCode: code, Message: message, Error: detail})
}

var kindStatus = map[service.AuthErrorKind]int{
	service.KindDirectoryBindFailed:   http.StatusUnauthorized,
	service.KindRoleNotProvisioned:    http.StatusForbidden,
	service.KindConfigurationMissing:  http.StatusInternalServerError,
	service.KindInvalidOrExpiredToken: http.StatusUnauthorized,
	service.KindSessionRevoked:        http.StatusUnauthorized,
	service.KindUserDeleted:           http.StatusUnauthorized,
	service.KindMissingToken:          http.StatusBadRequest,
}

// failAuth maps an auth service error onto its HTTP representation. Anything
// without a kind is an internal error and stays opaque to the caller.
func failAuth(c echo.Context, err error) error {
	var ae *service.AuthError
	if errors.As(err, &ae) {
		return fail(c, kindStatus[ae.Kind], ae.Message, string(ae.Kind))
	}
	return fail(c, http.StatusInternalServerError, "internal server error", "")
}
