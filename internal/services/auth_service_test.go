package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/melodyground/backend/internal/config"
	"github.com/melodyground/backend/internal/models"
	"github.com/melodyground/backend/internal/repositories"
	"github.com/melodyground/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for service testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	// A pooled second connection would see its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Composition{},
		&models.NoteSequence{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		TokenValidity: time.Hour,
	}
}

func TestRegister_Success(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	user, err := svc.Register("alice", "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, user.UserID)
	assert.NotEqual(t, "secret1", user.PasswordHash)
}

func TestRegister_DuplicateUsernameBeforeEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register("alice", "a@x.com", "secret1")
	require.NoError(t, err)

	// Same username, different email
	_, err = svc.Register("alice", "b@x.com", "secret1")
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)

	// Same email, different username
	_, err = svc.Register("bob", "a@x.com", "secret1")
	assert.ErrorIs(t, err, types.ErrDuplicateEmail)

	// Both conflict: username is reported first
	_, err = svc.Register("alice", "a@x.com", "secret1")
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)
}

func TestRegister_ConstraintBackstop(t *testing.T) {
	db := setupTestDB(t)

	// Bypass the service pre-checks and hit the unique index directly, the
	// way a racing registration would.
	repo := &repositories.UserRepository{DB: db}
	_, err := repo.Create(&models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(&models.User{Username: "alice", Email: "b@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)

	_, err = repo.Create(&models.User{Username: "bob", Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, types.ErrDuplicateEmail)
}

func TestLogin_Success(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register("alice", "a@x.com", "secret1")
	require.NoError(t, err)

	token, user, err := svc.Login("alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register("alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login("alice", "wrong")
	_, _, unknownUser := svc.Login("mallory", "secret1")

	assert.ErrorIs(t, wrongPassword, types.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, types.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestCurrentUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register("alice", "a@x.com", "secret1")
	require.NoError(t, err)

	token, _, err := svc.Login("alice", "secret1")
	require.NoError(t, err)

	user, err := svc.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestCurrentUser_InvalidToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.CurrentUser("not-a-token")
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
}

func TestCurrentUser_UnknownUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	// A valid token for a username that was never registered
	other := NewAuthService(setupTestDB(t), testConfig())
	_, err := other.Register("ghost", "g@x.com", "secret1")
	require.NoError(t, err)
	token, _, err := other.Login("ghost", "secret1")
	require.NoError(t, err)

	_, err = svc.CurrentUser(token)
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
}
