package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgAuth "github.com/andreviana/cellshop-pos-backend/pkg/auth"
	"github.com/andreviana/cellshop-pos-backend/pkg/config"
	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
)

const (
	allowedEmail = "loja1@cellshop.test"
	testPassword = "correct horse battery"
)

type stubSessionManager struct {
	generated []string
	fail      bool
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	if s.fail {
		return "", assert.AnError
	}
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "pos-api-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB, *stubSessionManager) {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.StoreAccount{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		AccountRepo:    NewRepository(conn),
		SessionManager: sessions,
		JWTConfig:      jwtConfig(),
		StoresConfig: config.StoresConfig{
			AllowedEmails: []string{allowedEmail, "loja2@cellshop.test"},
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn, sessions
}

func registerAccount(t *testing.T, svc Service, email string) *AccountDTO {
	t.Helper()
	dto, err := svc.Register(context.Background(), RegisterRequest{
		Email:       email,
		Password:    testPassword,
		DisplayName: "Loja Centro",
	})
	require.NoError(t, err)
	return dto
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	registerAccount(t, svc, allowedEmail)

	resp, err := svc.Login(ctx, LoginRequest{Email: allowedEmail, Password: testPassword})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.Account.LastLoginAt)
	require.Len(t, sessions.generated, 1)

	claims, err := pkgAuth.ParseAccessToken(jwtConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, allowedEmail, claims.Store)
	assert.Equal(t, resp.Account.ID, claims.AccountID)
	assert.Equal(t, sessions.generated[0], claims.ID)
}

func TestLoginNormalizesEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	registerAccount(t, svc, allowedEmail)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  LOJA1@cellshop.test ",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, allowedEmail, resp.Account.Email)
}

func TestLoginRejectsUnlistedEmail(t *testing.T) {
	t.Parallel()

	svc, conn, _ := newTestService(t)

	// Even with a valid account row, an email off the allow-list cannot sign in.
	account := &models.StoreAccount{
		Email:        "intruso@cellshop.test",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(account).Error)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "intruso@cellshop.test",
		Password: testPassword,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	registerAccount(t, svc, allowedEmail)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    allowedEmail,
		Password: "wrong",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	t.Parallel()

	svc, conn, _ := newTestService(t)
	dto := registerAccount(t, svc, allowedEmail)

	require.NoError(t, conn.Model(&models.StoreAccount{}).
		Where("id = ?", dto.ID).
		Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    allowedEmail,
		Password: testPassword,
	})
	require.Error(t, err)
}

func TestRegisterRejectsUnlistedEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "fora@cellshop.test",
		Password: testPassword,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	registerAccount(t, svc, allowedEmail)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    allowedEmail,
		Password: testPassword,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}
