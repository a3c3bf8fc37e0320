package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// WorkspaceStore persists the user's filter collection between runs
type WorkspaceStore interface {
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	SaveWorkspace(ctx context.Context, records []FilterRecord, selectedID string) error
	LoadWorkspace(ctx context.Context) ([]FilterRecord, string, error)
}

// SQLiteStore implements WorkspaceStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
}

// NewSQLiteStore opens the database file
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{db: db, path: cfg.Path}, nil
}

// Connect configures the pool and pings the database
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&FilterRecord{}, &WorkspaceState{})
}

// SaveWorkspace replaces every stored filter with records, in order
func (s *SQLiteStore) SaveWorkspace(ctx context.Context, records []FilterRecord, selectedID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&FilterRecord{}).Error; err != nil {
			return fmt.Errorf("clear filters: %w", err)
		}

		for i := range records {
			records[i].Position = i
			if records[i].ID == "" {
				records[i].ID = uuid.NewString()
			}
		}
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("insert filters: %w", err)
			}
		}

		state := WorkspaceState{ID: 1, SelectedFilterID: selectedID}
		return tx.Save(&state).Error
	})
}

// LoadWorkspace returns stored filters in order and the selected filter ID
func (s *SQLiteStore) LoadWorkspace(ctx context.Context) ([]FilterRecord, string, error) {
	var records []FilterRecord
	if err := s.db.WithContext(ctx).Order("position asc").Find(&records).Error; err != nil {
		return nil, "", err
	}

	var state WorkspaceState
	err := s.db.WithContext(ctx).Where("id = ?", 1).First(&state).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	return records, state.SelectedFilterID, nil
}
