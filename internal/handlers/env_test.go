package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/config"
	"github.com/prasetyow/warecash/internal/directory"
	"github.com/prasetyow/warecash/internal/models"
	"github.com/prasetyow/warecash/internal/service"
	"github.com/prasetyow/warecash/internal/session"
	"github.com/prasetyow/warecash/internal/tokens"
)

type fakeDirectory struct {
	identities map[string]directory.Identity
	err        error
}

func (f *fakeDirectory) Authenticate(_ context.Context, username, password string) (*directory.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.identities[username]
	if !ok || password == "" {
		return nil, errors.New("directory bind: invalid credentials")
	}
	return &id, nil
}

type fakeSessions struct {
	records map[string]session.Record
}

func (f *fakeSessions) Get(_ context.Context, jti string) (*session.Record, error) {
	rec, ok := f.records[jti]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeSessions) Put(_ context.Context, jti string, rec session.Record, _ time.Duration) error {
	f.records[jti] = rec
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, jti string) error {
	delete(f.records, jti)
	return nil
}

func (f *fakeSessions) TryPut(ctx context.Context, jti string, rec session.Record, ttl time.Duration) {
	_ = f.Put(ctx, jti, rec, ttl)
}

func (f *fakeSessions) TryDelete(ctx context.Context, jti string) {
	_ = f.Delete(ctx, jti)
}

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Dir      *fakeDirectory
	Sessions *fakeSessions
	Codec    *tokens.Codec

	Auth      *AuthHandler
	Warehouse *WarehouseHandler
	Category  *CategoryHandler
	Budget    *BudgetHandler
	FlowLog   *FlowLogHandler
	Analytics *AnalyticsHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Warehouse{},
		&models.User{},
		&models.Category{},
		&models.Budget{},
		&models.FlowLog{},
	))

	dir := &fakeDirectory{identities: map[string]directory.Identity{
		"alice": {
			Username:    "alice",
			Description: "SALES",
			DisplayName: "Alice S",
			OfficeName:  "JKT1",
		},
	}}
	sessions := &fakeSessions{records: map[string]session.Record{}}

	codec, err := tokens.NewCodec([]byte("access-secret"), []byte("refresh-secret"))
	require.NoError(t, err)

	svc := &service.AuthService{
		DB:       db,
		Dir:      dir,
		Codec:    codec,
		Sessions: sessions,
		LDAP:     config.LDAPConfig{Host: "dc0.example.test", Port: 389, BaseDN: "dc=example,dc=test", Domain: "example.test"},
	}

	return &testEnv{
		T:         t,
		E:         echo.New(),
		DB:        db,
		Dir:       dir,
		Sessions:  sessions,
		Codec:     codec,
		Auth:      &AuthHandler{Service: svc},
		Warehouse: &WarehouseHandler{DB: db},
		Category:  &CategoryHandler{DB: db},
		Budget:    &BudgetHandler{DB: db},
		FlowLog:   &FlowLogHandler{DB: db},
		Analytics: &AnalyticsHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
