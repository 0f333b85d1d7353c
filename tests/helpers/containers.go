package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/melodyground/backend/data"
	"github.com/melodyground/backend/internal/config"
	"github.com/melodyground/backend/internal/utils"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartMariaDB starts a throwaway MariaDB container, provisions the schema
// from the embedded DDL and returns a ready-to-use config. The returned
// terminate func must be deferred by the caller.
func StartMariaDB(t *testing.T) (*config.Config, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mariadb:11",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": "rootpass",
				"MARIADB_DATABASE":      "melodyground",
				"MARIADB_USER":          "melody",
				"MARIADB_PASSWORD":      "melodypass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}

	terminate := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, nat.Port("3306/tcp"))
	if err != nil {
		terminate()
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "mariadb",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "melodyground",
		DBUser:            "melody",
		DBPassword:        "melodypass",
		DBConnectionLimit: 5,
		JWTSecret:         "integration-test-secret",
		TokenValidity:     time.Hour,
	}

	if err := provisionMariaDBSchema(cfg); err != nil {
		terminate()
		t.Fatalf("Failed to provision schema: %v", err)
	}

	return cfg, terminate
}

// provisionMariaDBSchema waits for the server to accept connections and
// applies the embedded DDL statement by statement.
func provisionMariaDBSchema(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBDatabase)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	deadline := time.Now().Add(60 * time.Second)
	for {
		if err = utils.PingDatabase(cfg.DBHost, cfg.DBPort); err == nil {
			if err = db.Ping(); err == nil {
				break
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not reachable: %w", err)
		}
		time.Sleep(time.Second)
	}

	for _, stmt := range strings.Split(data.InitdbMariaDBTables, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("DDL failed: %w", err)
		}
	}

	return nil
}

// StartPostgres starts a throwaway PostgreSQL container and returns a
// ready-to-use config. Schema setup is left to AutoMigrate.
func StartPostgres(t *testing.T) (*config.Config, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "melodyground",
				"POSTGRES_USER":     "melody",
				"POSTGRES_PASSWORD": "melodypass",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	terminate := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		terminate()
		t.Fatalf("Failed to get container port: %v", err)
	}

	return &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "melodyground",
		DBUser:            "melody",
		DBPassword:        "melodypass",
		DBConnectionLimit: 5,
		JWTSecret:         "integration-test-secret",
		TokenValidity:     time.Hour,
	}, terminate
}
