package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arcollage/viewer/internal/config"
)

// SqliteBackend persists sessions to a SQLite database through GORM. An
// empty path opens a shared in-memory database, useful for tests.
type SqliteBackend struct {
	cfg config.SqliteConfig
	db  *gorm.DB

	mu      sync.Mutex
	session *Session
}

func NewSqliteBackend(cfg config.SqliteConfig) *SqliteBackend {
	return &SqliteBackend{cfg: cfg}
}

// Init opens the database and migrates the schema.
func (b *SqliteBackend) Init() error {
	db, err := openSqlite(b.cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite db: %w", err)
	}
	b.db = db

	if err := db.AutoMigrate(&Session{}, &PoseSample{}, &ControlEvent{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (b *SqliteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *SqliteBackend) StartSession(s *Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to create session row: %w", err)
	}
	b.session = s
	return nil
}

func (b *SqliteBackend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return fmt.Errorf("no session in progress")
	}
	b.session.EndTime = time.Now()
	err := b.db.Model(b.session).Update("end_time", b.session.EndTime).Error
	b.session = nil
	return err
}

func (b *SqliteBackend) RecordPose(sample PoseSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	sample.SessionID = b.session.ID
	return b.db.Create(&sample).Error
}

func (b *SqliteBackend) RecordControl(event ControlEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	event.SessionID = b.session.ID
	return b.db.Create(&event).Error
}

func openSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}
