// Package database connects to MongoDB and applies index migrations
package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/userhub/backend/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const migrationsCollection = "schema_migrations"

// Connect opens a MongoDB client and verifies the connection
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout).
		SetMaxPoolSize(25).
		SetMinPoolSize(5)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// Pinger returns a readiness check for the client
func Pinger(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// RunMigrations applies the pending migrations for the configured database
func RunMigrations(client *mongo.Client, cfg config.MongoConfig) error {
	driver, err := mongodb.WithInstance(client, &mongodb.Config{
		DatabaseName:         cfg.Database,
		MigrationsCollection: migrationsCollection,
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := cfg.MigrationsPath
	if migrationPath == "file://migrations" {
		if _, err := os.Stat("migrations"); os.IsNotExist(err) {
			// Try parent directory if running from cmd
			if _, err := os.Stat("../migrations"); err == nil {
				migrationPath = "file://../migrations"
			}
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mongodb", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
