// Package sessions persists notebook sessions in a SQLite database kept in
// the server's runtime directory.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notelab/logging"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound indicates the session ID is unknown.
var ErrNotFound = errors.New("session not found")

// gormLogger bridges GORM logging onto the notelab logger
type gormLogger struct {
	level logger.LogLevel
}

// LogMode sets the log level
func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

// Info logs info messages
func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

// Warn logs warn messages
func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

// Error logs error messages
func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs SQL queries - errors and slow queries only
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

// Store provides session CRUD over a SQLite database.
type Store struct {
	db *gorm.DB
}

// NewStore opens (or creates) the session database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: &gormLogger{level: logger.Warn},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Create registers a new session for path and returns it.
func (s *Store) Create(ctx context.Context, path, name, kernelName string) (*Session, error) {
	session := &Session{
		ID:           uuid.New().String(),
		Path:         path,
		Name:         name,
		KernelName:   kernelName,
		LastActivity: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, fmt.Errorf("session conflicts with an existing one: %w", err)
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Get returns the session with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var session Session
	err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

// List returns all sessions ordered by creation time.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	var all []Session
	if err := s.db.WithContext(ctx).Order("created_at").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return all, nil
}

// Touch updates a session's last-activity timestamp.
func (s *Store) Touch(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&Session{}).
		Where("id = ?", id).
		Update("last_activity", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to touch session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the session with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Session{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// CullIdle deletes sessions idle for longer than maxIdle and returns how
// many were removed.
func (s *Store) CullIdle(ctx context.Context, maxIdle time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxIdle)
	result := s.db.WithContext(ctx).Delete(&Session{}, "last_activity < ?", cutoff)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cull idle sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
