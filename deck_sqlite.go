package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ── SQLite Deck Store ──────────────────────────────────────────────

type deckModel struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	Author      string    `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	Slots       string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (deckModel) TableName() string { return "decks" }

// SQLiteDeckStore keeps shared decks in a local or network-mounted SQLite
// file; `deckforge serve` exposes one over HTTP.
type SQLiteDeckStore struct {
	db  *gorm.DB
	now func() time.Time
}

func openDeckDB(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
}

func runDeckMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	return goose.UpContext(ctx, sqlDB, "migrations")
}

// OpenSQLiteDeckStore opens path and applies pending migrations.
func OpenSQLiteDeckStore(ctx context.Context, path string) (*SQLiteDeckStore, error) {
	db, err := openDeckDB(path)
	if err != nil {
		return nil, fmt.Errorf("open deck db: %w", err)
	}
	if err := runDeckMigrations(ctx, db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate deck db: %w", err)
	}
	return &SQLiteDeckStore{db: db, now: time.Now}, nil
}

func (s *SQLiteDeckStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteDeckStore) AddDeck(ctx context.Context, d Deck) (Deck, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	if d.Slots == nil {
		d.Slots = []DeckSlot{}
	}
	slots, err := json.Marshal(d.Slots)
	if err != nil {
		return Deck{}, err
	}
	m := deckModel{
		ID:          d.ID,
		Name:        d.Name,
		Author:      d.Author,
		Description: d.Description,
		Slots:       string(slots),
		CreatedAt:   d.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return Deck{}, err
	}
	return d, nil
}

func (s *SQLiteDeckStore) ListDecks(ctx context.Context) ([]Deck, error) {
	rows := make([]deckModel, 0)
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	decks := make([]Deck, 0, len(rows))
	for _, m := range rows {
		d := Deck{
			ID:          m.ID,
			Name:        m.Name,
			Author:      m.Author,
			Description: m.Description,
			CreatedAt:   m.CreatedAt.UTC(),
		}
		if err := json.Unmarshal([]byte(m.Slots), &d.Slots); err != nil {
			return nil, fmt.Errorf("deck %s slots: %w", m.ID, err)
		}
		decks = append(decks, d)
	}
	return decks, nil
}
