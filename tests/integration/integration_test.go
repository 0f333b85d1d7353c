package integration_test

import (
	"testing"
	"time"

	"github.com/melodyground/backend/internal/config"
	"github.com/melodyground/backend/internal/database"
	"github.com/melodyground/backend/internal/models"
	"github.com/melodyground/backend/internal/repositories"
	"github.com/melodyground/backend/internal/services"
	"github.com/melodyground/backend/internal/types"
	"github.com/melodyground/backend/tests/helpers"
	"gorm.io/gorm"
)

// TestWithMariaDB runs the service suite against a real MariaDB container
// with the schema provisioned from the embedded DDL.
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg, terminate := helpers.StartMariaDB(t)
	defer terminate()

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	runSuite(t, cfg, db)
}

// TestWithPostgreSQL runs the service suite against a real PostgreSQL
// container with the schema created by AutoMigrate.
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg, terminate := helpers.StartPostgres(t)
	defer terminate()

	// The postgres container can accept TCP connections before the final
	// restart completes
	time.Sleep(2 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	runSuite(t, cfg, db)
}

func runSuite(t *testing.T, cfg *config.Config, db *gorm.DB) {
	t.Run("RegisterAndLogin", func(t *testing.T) {
		testRegisterAndLogin(t, cfg, db)
	})
	t.Run("UniquenessConstraintBackstop", func(t *testing.T) {
		testUniquenessConstraintBackstop(t, db)
	})
	t.Run("CompositionLifecycle", func(t *testing.T) {
		testCompositionLifecycle(t, db)
	})
}

func testRegisterAndLogin(t *testing.T, cfg *config.Config, db *gorm.DB) {
	svc := services.NewAuthService(db, cfg)

	if _, err := svc.Register("it_alice", "it_alice@x.com", "secret1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Register("it_alice", "other@x.com", "secret1"); err != types.ErrDuplicateUsername {
		t.Fatalf("Expected ErrDuplicateUsername, got %v", err)
	}

	token, user, err := svc.Login("it_alice", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" || user.Email != "it_alice@x.com" {
		t.Fatalf("Unexpected login result: token=%q user=%+v", token, user)
	}

	if _, _, err := svc.Login("it_alice", "wrong"); err != types.ErrInvalidCredentials {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}

	resolved, err := svc.CurrentUser(token)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if resolved.Username != "it_alice" {
		t.Fatalf("Expected it_alice, got %q", resolved.Username)
	}
}

// testUniquenessConstraintBackstop hits the unique indexes directly, the
// way two racing registrations would after both passed the pre-check.
func testUniquenessConstraintBackstop(t *testing.T, db *gorm.DB) {
	repo := &repositories.UserRepository{DB: db}

	if _, err := repo.Create(&models.User{
		Username: "it_race", Email: "it_race@x.com", PasswordHash: "h",
	}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	if _, err := repo.Create(&models.User{
		Username: "it_race", Email: "it_race2@x.com", PasswordHash: "h",
	}); err != types.ErrDuplicateUsername {
		t.Fatalf("Expected ErrDuplicateUsername from constraint, got %v", err)
	}

	if _, err := repo.Create(&models.User{
		Username: "it_race2", Email: "it_race@x.com", PasswordHash: "h",
	}); err != types.ErrDuplicateEmail {
		t.Fatalf("Expected ErrDuplicateEmail from constraint, got %v", err)
	}
}

func testCompositionLifecycle(t *testing.T, db *gorm.DB) {
	svc := services.NewCompositionService(db)

	owner := &models.User{Username: "it_owner", Email: "it_owner@x.com", PasswordHash: "h"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}
	other := &models.User{Username: "it_other", Email: "it_other@x.com", PasswordHash: "h"}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("Failed to create other user: %v", err)
	}

	duration := 500
	velocity := 80
	tempo := 120
	input := &services.CompositionInput{
		Title: "Integration Piece",
		Tempo: &tempo,
		Notes: []services.NoteInput{
			{Timestamp: 0, Note: "C4", Instrument: "piano", Duration: &duration, Velocity: &velocity},
			{Timestamp: 500, Note: "E4", Instrument: "piano", Duration: &duration},
			{Timestamp: 1000, Note: "G4", Instrument: "piano", Duration: &duration},
		},
	}

	created, err := svc.Create(owner, input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fetched, err := svc.Get(owner, created.CompositionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(fetched.NoteSequences) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(fetched.NoteSequences))
	}
	for i, want := range []string{"C4", "E4", "G4"} {
		if fetched.NoteSequences[i].Note != want {
			t.Errorf("Note %d: expected %q, got %q", i, want, fetched.NoteSequences[i].Note)
		}
	}
	if fetched.NoteSequences[0].Velocity != 80 {
		t.Errorf("Expected explicit velocity 80, got %d", fetched.NoteSequences[0].Velocity)
	}
	if fetched.NoteSequences[1].Velocity != services.DefaultVelocity {
		t.Errorf("Expected default velocity, got %d", fetched.NoteSequences[1].Velocity)
	}

	if _, err := svc.Get(other, created.CompositionID); err != types.ErrForbidden {
		t.Fatalf("Expected ErrForbidden for other user, got %v", err)
	}
	if err := svc.Delete(other, created.CompositionID); err != types.ErrForbidden {
		t.Fatalf("Expected ErrForbidden on delete by other user, got %v", err)
	}

	if err := svc.Delete(owner, created.CompositionID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var orphans int64
	if err := db.Model(&models.NoteSequence{}).
		Where("composition_id = ?", created.CompositionID).Count(&orphans).Error; err != nil {
		t.Fatalf("Failed to count notes: %v", err)
	}
	if orphans != 0 {
		t.Errorf("Expected no orphaned notes, got %d", orphans)
	}
}
