package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avalenz-dev/storefront-backend/internal/users"
	pkgAuth "github.com/avalenz-dev/storefront-backend/pkg/auth"
	"github.com/avalenz-dev/storefront-backend/pkg/config"
	"github.com/avalenz-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT,
  phone TEXT,
  address TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(usersTable).Error)
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep hashing fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newAuthService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(db),
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
		Now:            func() time.Time { return time.Now() },
	})
	require.NoError(t, err)
	return svc
}

func uniqueRegisterRequest() RegisterRequest {
	suffix := uuid.NewString()[:8]
	return RegisterRequest{
		Username: "user_" + suffix,
		Email:    "user_" + suffix + "@example.com",
		Password: "correct horse battery",
	}
}

func TestRegisterCreatesCustomerAndMintsToken(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	req := uniqueRegisterRequest()
	resp, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.User)
	assert.Equal(t, req.Username, resp.User.Username)
	assert.Equal(t, req.Email, resp.User.Email)
	assert.Equal(t, enums.UserRoleCustomer, resp.User.Role)
	assert.NotEqual(t, uuid.Nil, resp.User.ID)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, req.Username, claims.Username)
	assert.Equal(t, req.Email, claims.Email)
	assert.Equal(t, enums.UserRoleCustomer, claims.Role)
}

func TestRegisterNeverStoresPlaintextPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	req := uniqueRegisterRequest()
	resp, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	var hash string
	require.NoError(t, db.Raw("SELECT password_hash FROM users WHERE id = ?", resp.User.ID).Scan(&hash).Error)
	assert.NotEqual(t, req.Password, hash)
	assert.Contains(t, hash, "$argon2id$")
}

func TestRegisterDuplicateUsernameIsConflict(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	req := uniqueRegisterRequest()
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	dup := uniqueRegisterRequest()
	dup.Username = req.Username
	_, err = svc.Register(context.Background(), dup)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	req := uniqueRegisterRequest()
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	dup := uniqueRegisterRequest()
	dup.Email = req.Email
	_, err = svc.Register(context.Background(), dup)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginAcceptsUsernameOrEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	req := uniqueRegisterRequest()
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	byUsername, err := svc.Login(context.Background(), LoginRequest{Username: req.Username, Password: req.Password})
	require.NoError(t, err)
	assert.NotEmpty(t, byUsername.Token)

	byEmail, err := svc.Login(context.Background(), LoginRequest{Username: req.Email, Password: req.Password})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.Token)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	req := uniqueRegisterRequest()
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, badPassword := svc.Login(context.Background(), LoginRequest{Username: req.Username, Password: "wrong"})
	_, unknownUser := svc.Login(context.Background(), LoginRequest{Username: "nobody_" + uuid.NewString()[:8], Password: "wrong"})

	for _, err := range []error{badPassword, unknownUser} {
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, invalidCredentialsMessage, typed.Message())
	}
}

func TestProfileReturnsUserAndNotFound(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db)

	req := uniqueRegisterRequest()
	resp, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	dto, err := svc.Profile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Username, dto.Username)

	_, err = svc.Profile(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
