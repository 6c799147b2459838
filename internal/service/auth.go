package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prasetyow/warecash/internal/config"
	"github.com/prasetyow/warecash/internal/directory"
	"github.com/prasetyow/warecash/internal/logging"
	"github.com/prasetyow/warecash/internal/models"
	"github.com/prasetyow/warecash/internal/roles"
	"github.com/prasetyow/warecash/internal/session"
	"github.com/prasetyow/warecash/internal/tokens"
)

// SessionStore is what the auth service needs from the redis-backed session
// store. The strict methods report real outcomes; the Try* variants are
// best-effort so a store outage never fails a login.
type SessionStore interface {
	Get(ctx context.Context, jti string) (*session.Record, error)
	Put(ctx context.Context, jti string, rec session.Record, ttl time.Duration) error
	Delete(ctx context.Context, jti string) error
	TryPut(ctx context.Context, jti string, rec session.Record, ttl time.Duration)
	TryDelete(ctx context.Context, jti string)
}

type AuthService struct {
	DB       *gorm.DB
	Dir      directory.Directory
	Codec    *tokens.Codec
	Sessions SessionStore
	LDAP     config.LDAPConfig
}

// RequestMeta is the caller context recorded in the session store for audit.
type RequestMeta struct {
	OriginIP  string
	UserAgent string
}

type LoginResult struct {
	User         models.User
	Warehouse    models.Warehouse
	Role         roles.Role
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Login binds to the directory with the supplied credentials, upserts the
// local user and warehouse from the directory attributes (last-login-wins)
// and issues a fresh token pair. A failed bind mutates nothing.
func (s *AuthService) Login(ctx context.Context, username, password string, meta RequestMeta) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if s.LDAP.IsZero() {
		l.Error("login failed", "reason", "ldap configuration missing")
		return nil, authErr(KindConfigurationMissing, "directory is not configured", nil)
	}

	identity, err := s.Dir.Authenticate(ctx, username, password)
	if err != nil {
		l.Warn("login failed", "reason", "directory bind", "error", err)
		return nil, authErr(KindDirectoryBindFailed, "invalid credentials or directory unreachable", err)
	}

	role, ok := roles.Parse(identity.Description)
	if !ok {
		l.Warn("login failed", "reason", "role not provisioned", "description", identity.Description)
		return nil, authErr(KindRoleNotProvisioned, "account is not provisioned for this application", nil)
	}

	user, warehouse, err := s.syncUser(ctx, identity)
	if err != nil {
		l.Error("login failed", "reason", "user sync", "error", err)
		return nil, err
	}

	pair, jti, err := s.issuePair(user, role)
	if err != nil {
		l.Error("login failed", "reason", "token sign", "error", err)
		return nil, err
	}

	s.Sessions.TryPut(ctx, jti, session.Record{
		Username:  user.Username,
		OriginIP:  meta.OriginIP,
		UserAgent: meta.UserAgent,
	}, session.TTL)

	l.Info("login ok", "warehouse", warehouse.Name, "role", role)

	return &LoginResult{
		User:         *user,
		Warehouse:    *warehouse,
		Role:         role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		AccessExp:    pair.AccessExp,
		RefreshExp:   pair.RefreshExp,
	}, nil
}

// Refresh rotates a valid refresh token into a new pair. The old session
// record is deleted before the new one is written, so a rotated-away refresh
// token is revoked immediately rather than lingering until its natural
// expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Codec.Verify(refreshToken, tokens.KindRefresh)
	if err != nil {
		l.Warn("refresh failed", "reason", "verify", "error", err)
		return nil, authErr(KindInvalidOrExpiredToken, "refresh token invalid or expired", err)
	}

	rec, err := s.Sessions.Get(ctx, claims.ID)
	if err != nil {
		l.Warn("refresh failed", "reason", "session revoked", "jti", claims.ID)
		return nil, authErr(KindSessionRevoked, "session has been revoked or expired", err)
	}

	var user models.User
	if err := s.DB.Where("username = ?", claims.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh failed", "reason", "user deleted", "username", claims.Username)
			return nil, authErr(KindUserDeleted, "user no longer exists", err)
		}
		return nil, err
	}

	pair, jti, err := s.issuePair(&user, claims.Description)
	if err != nil {
		l.Error("refresh failed", "reason", "token sign", "error", err)
		return nil, err
	}

	s.Sessions.TryDelete(ctx, claims.ID)
	s.Sessions.TryPut(ctx, jti, *rec, session.TTL)

	return pair, nil
}

// Logout revokes the session named by the access token's jti. Revoking an
// already-absent session is a no-op, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if accessToken == "" {
		return authErr(KindMissingToken, "no access token supplied", nil)
	}

	claims, err := s.Codec.Verify(accessToken, tokens.KindAccess)
	if err != nil {
		l.Warn("logout failed", "reason", "verify", "error", err)
		return authErr(KindInvalidOrExpiredToken, "access token invalid or expired", err)
	}

	s.Sessions.TryDelete(ctx, claims.ID)
	l.Info("logout ok", "username", claims.Username)
	return nil
}

func (s *AuthService) issuePair(user *models.User, role roles.Role) (*TokenPair, string, error) {
	jti := tokens.NewJTI()
	claims := tokens.Claims{
		Username:    user.Username,
		Description: role,
		WarehouseID: user.WarehouseID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.Username,
			ID:      jti,
		},
	}

	now := time.Now()
	access, err := s.Codec.Sign(claims, tokens.KindAccess)
	if err != nil {
		return nil, "", err
	}
	refresh, err := s.Codec.Sign(claims, tokens.KindRefresh)
	if err != nil {
		return nil, "", err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    now.Add(tokens.AccessTTL),
		RefreshExp:   now.Add(tokens.RefreshTTL),
	}, jti, nil
}

// syncUser reconciles the local user/warehouse rows with what the directory
// reports. The directory is authoritative: office moves repoint the user to a
// warehouse with the new name, description and display name are overwritten
// unconditionally.
func (s *AuthService) syncUser(ctx context.Context, identity *directory.Identity) (*models.User, *models.Warehouse, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	err := db.Where("username = ?", identity.Username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.createUser(ctx, identity)
	case err != nil:
		return nil, nil, err
	}

	var warehouse models.Warehouse
	if err := db.First(&warehouse, user.WarehouseID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	if !strings.EqualFold(warehouse.Name, identity.OfficeName) {
		moved, err := upsertWarehouse(db, identity.OfficeName)
		if err != nil {
			return nil, nil, err
		}
		user.WarehouseID = moved.ID
		warehouse = *moved
	}

	user.Description = identity.Description
	user.DisplayName = identity.DisplayName
	if err := db.Save(&user).Error; err != nil {
		return nil, nil, err
	}

	return &user, &warehouse, nil
}

// createUser runs the first-login path in one transaction so two concurrent
// first logins for the same username cannot leave a half-created pair. Both
// upserts lean on unique constraints: the race loser observes the winner's
// row instead of erroring.
func (s *AuthService) createUser(ctx context.Context, identity *directory.Identity) (*models.User, *models.Warehouse, error) {
	var (
		user      models.User
		warehouse *models.Warehouse
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		warehouse, err = upsertWarehouse(tx, identity.OfficeName)
		if err != nil {
			return err
		}

		user = models.User{
			Username:    identity.Username,
			Description: identity.Description,
			DisplayName: identity.DisplayName,
			WarehouseID: warehouse.ID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "display_name", "warehouse_id"}),
		}).Create(&user).Error; err != nil {
			return err
		}

		return tx.Model(warehouse).Association("Members").Append(&user)
	})
	if err != nil {
		return nil, nil, err
	}

	return &user, warehouse, nil
}

// upsertWarehouse creates a warehouse by name if absent and returns the row,
// matching the name case-insensitively so "JKT1" and "jkt1" stay one
// warehouse.
func upsertWarehouse(tx *gorm.DB, name string) (*models.Warehouse, error) {
	var existing models.Warehouse
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.Warehouse{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&created).Error; err != nil {
		return nil, err
	}
	if created.ID != 0 {
		return &created, nil
	}

	// Lost the race: fetch the winner's row.
	if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}
