package overlay

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// recordModel is the overlay_records row.
type recordModel struct {
	ID        uint   `gorm:"primaryKey"`
	Container string `gorm:"not null;uniqueIndex:idx_overlay_container_key"`
	Key       string `gorm:"column:record_key;not null;uniqueIndex:idx_overlay_container_key"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (recordModel) TableName() string { return "overlay_records" }

// SQLStore keeps records in a SQLite database.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (or creates) the database at path and runs migrations.
// An empty path selects ~/.config/entitydiagram/overlay.db.
func NewSQLStore(ctx context.Context, path string, opts ...SQLOption) (*SQLStore, error) {
	o := sqlOptions{logger: discardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "entitydiagram", "overlay.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: path}, &gorm.Config{Logger: newGormLog(o.logger)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := runMigrations(ctx, db, o.logger); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func runMigrations(ctx context.Context, db *gorm.DB, logger *log.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	goose.SetLogger(gooseLog{l: logger})
	goose.SetBaseFS(migrationsFS)
	return goose.UpContext(ctx, sqlDB, "migrations")
}

func (s *SQLStore) Get(ctx context.Context, container, key string) (*Record, error) {
	var m recordModel
	err := s.db.WithContext(ctx).
		Where("container = ? AND record_key = ?", container, key).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get", Record{Container: container, Key: key}, err)
	}
	return &Record{
		Container:    m.Container,
		Key:          m.Key,
		Value:        []byte(m.Value),
		LastModified: m.UpdatedAt,
	}, nil
}

func (s *SQLStore) Put(ctx context.Context, rec Record) error {
	m := recordModel{
		Container: rec.Container,
		Key:       rec.Key,
		Value:     string(rec.Value),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "container"}, {Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return storeErr("put", rec, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*SQLStore)(nil)
