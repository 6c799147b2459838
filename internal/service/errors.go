package service

import (
	"errors"
	"fmt"
)

type AuthErrorKind string

const (
	KindDirectoryBindFailed   AuthErrorKind = "directory_bind_failed"
	KindRoleNotProvisioned    AuthErrorKind = "role_not_provisioned"
	KindConfigurationMissing  AuthErrorKind = "configuration_missing"
	KindInvalidOrExpiredToken AuthErrorKind = "invalid_or_expired_token"
	KindSessionRevoked        AuthErrorKind = "session_revoked"
	KindUserDeleted           AuthErrorKind = "user_deleted"
	KindMissingToken          AuthErrorKind = "missing_token"
)

// AuthError is the typed failure surface of the auth service. Handlers map
// the kind onto an HTTP status and a structured body.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

func authErr(kind AuthErrorKind, msg string, err error) *AuthError {
	return &AuthError{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the AuthErrorKind from err, or "" when err is not an
// AuthError.
func KindOf(err error) AuthErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
