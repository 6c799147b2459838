package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/prasetyow/warecash/internal/roles"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	AccessTTL  = 10 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrTokenExpired = errors.New("tokens: token expired")
	ErrTokenInvalid = errors.New("tokens: token invalid")
)

// Claims is the payload shared by the access and refresh tokens of one
// session. The jti lives in RegisteredClaims.ID and doubles as the session
// store key.
type Claims struct {
	Username    string     `json:"username"`
	Description roles.Role `json:"description"`
	WarehouseID uint       `json:"warehouse_id"`
	jwt.RegisteredClaims
}

// Codec signs and verifies token pairs with two independent HS256 secrets.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewCodec refuses empty secrets: a missing secret must abort startup, not
// surface later as an unverifiable token.
func NewCodec(accessSecret, refreshSecret []byte) (*Codec, error) {
	if len(accessSecret) == 0 {
		return nil, errors.New("tokens: access secret is empty")
	}
	if len(refreshSecret) == 0 {
		return nil, errors.New("tokens: refresh secret is empty")
	}
	return &Codec{accessSecret: accessSecret, refreshSecret: refreshSecret}, nil
}

func (c *Codec) secret(kind Kind) []byte {
	if kind == KindRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

func ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return RefreshTTL
	}
	return AccessTTL
}

// NewJTI returns a fresh session identifier.
func NewJTI() string { return uuid.NewString() }

// Sign issues a token of the given kind with the kind's expiry baked in.
func (c *Codec) Sign(claims Claims, kind Kind) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl(kind)))

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret(kind))
	if err != nil {
		return "", fmt.Errorf("tokens: sign %s: %w", kind, err)
	}
	return signed, nil
}

// Verify parses and validates a token of the given kind. Expiry is reported
// as ErrTokenExpired, every other failure as ErrTokenInvalid.
func (c *Codec) Verify(raw string, kind Kind) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.secret(kind), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}
