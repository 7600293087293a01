// File: /database/database.go
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"filmogram-api/config"
	"filmogram-api/models"
	"filmogram-api/repositories"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens a gorm connection for the given storage driver.
func Initialize(driver, databaseURL string, level slog.Level) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.StorageMySQL:
		dialector = mysql.Open(databaseURL)
	case config.StoragePostgres:
		dialector = postgres.Open(databaseURL)
	case config.StorageSQLite:
		dialector = sqlite.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(gormLogLevel(level)),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if driver == config.StorageSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

func gormLogLevel(level slog.Level) logger.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return logger.Info
	case level <= slog.LevelWarn:
		return logger.Warn
	default:
		return logger.Error
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Film{},
		&models.FilmLike{},
		&models.Friendship{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addDatabaseConstraints(db)
	return nil
}

// addDatabaseConstraints adds checks AutoMigrate cannot express. Failures are
// logged and ignored: the constraint may already exist, and sqlite cannot add
// constraints to an existing table.
func addDatabaseConstraints(db *gorm.DB) {
	if db.Dialector.Name() == "sqlite" {
		return
	}

	statements := map[string]string{
		"ck_friendships_pair_order": "ALTER TABLE friendships ADD CONSTRAINT ck_friendships_pair_order CHECK (user_low_id < user_high_id)",
		"ck_films_likes_count":      "ALTER TABLE films ADD CONSTRAINT ck_films_likes_count CHECK (likes_count >= 0)",
	}
	for name, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			slog.Warn("could not add constraint", "constraint", name, "error", err)
		}
	}
}

// SeedData populates an empty directory with sample users and films for development.
func SeedData(ctx context.Context, dir repositories.Directory) error {
	users, err := dir.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		slog.Info("database already has data, skipping seed")
		return nil
	}

	testUsers := []models.User{
		{
			Email:    "john@example.com",
			Login:    "john_doe",
			Name:     "John Doe",
			Birthday: time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			Email:    "jane@example.com",
			Login:    "jane_smith",
			Name:     "Jane Smith",
			Birthday: time.Date(1992, time.July, 2, 0, 0, 0, 0, time.UTC),
		},
	}
	for i := range testUsers {
		if err := dir.CreateUser(ctx, &testUsers[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", testUsers[i].Login, err)
		}
	}

	testFilms := []models.Film{
		{
			Name:        "Solaris",
			Description: "A psychologist is sent to a space station orbiting an ocean planet.",
			ReleaseDate: time.Date(1972, time.March, 20, 0, 0, 0, 0, time.UTC),
			Duration:    166,
			Genres:      models.StringSlice{"drama", "science fiction"},
			Mpa:         "PG",
		},
		{
			Name:        "Stalker",
			Description: "A guide leads two men through the Zone to a room that grants wishes.",
			ReleaseDate: time.Date(1979, time.May, 25, 0, 0, 0, 0, time.UTC),
			Duration:    161,
			Genres:      models.StringSlice{"drama", "science fiction"},
			Mpa:         "PG",
		},
	}
	for i := range testFilms {
		if err := dir.CreateFilm(ctx, &testFilms[i]); err != nil {
			return fmt.Errorf("seed film %s: %w", testFilms[i].Name, err)
		}
	}

	slog.Info("database seeded", "users", len(testUsers), "films", len(testFilms))
	return nil
}
