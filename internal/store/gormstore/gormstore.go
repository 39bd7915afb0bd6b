// Package gormstore implements the store.RowStore contract on top of
// gorm + Postgres, the teacher's own persistence stack.
package gormstore

import (
	"context"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lucianoflow8/FlowTracking-Backend/internal/store"
)

// Store wraps a *gorm.DB to satisfy store.RowStore.
type Store struct {
	DB *gorm.DB
}

// Open connects to Postgres using the DB_DSN environment variable, matching
// the teacher's own bootstrap convention, and AutoMigrates every row model
// this domain persists unless DB_AUTO_MIGRATE is set to a falsy value.
func Open() (*Store, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if shouldAutoMigrate() {
		models := []any{
			&store.Line{}, &store.Receipt{}, &store.SeenMessage{}, &store.Lead{},
			&store.Chat{}, &store.Agenda{},
		}
		for _, m := range models {
			if err := db.AutoMigrate(m); err != nil {
				log.Printf("gormstore: migration warning for %T: %v", m, err)
			}
		}
	}

	return &Store{DB: db}, nil
}

func shouldAutoMigrate() bool {
	v := strings.ToLower(os.Getenv("DB_AUTO_MIGRATE"))
	return v != "false" && v != "0" && v != "no"
}

// Insert creates a new row.
func (s *Store) Insert(ctx context.Context, row any) error {
	return s.DB.WithContext(ctx).Create(row).Error
}

// Upsert creates row, updating every column on a conflicting key instead of
// failing.
func (s *Store) Upsert(ctx context.Context, row any, conflictColumns []string) error {
	cols := make([]clause.Column, len(conflictColumns))
	for i, c := range conflictColumns {
		cols[i] = clause.Column{Name: c}
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   cols,
		UpdateAll: true,
	}).Create(row).Error
}

// Update applies a partial column update to the row identified by id.
func (s *Store) Update(ctx context.Context, row any, id any, updates map[string]any) error {
	return s.DB.WithContext(ctx).Model(row).Where("id = ?", id).Updates(updates).Error
}

// Select runs a raw WHERE-clause query into dest, a pointer to a struct or
// slice of structs.
func (s *Store) Select(ctx context.Context, dest any, query string, args ...any) error {
	return s.DB.WithContext(ctx).Where(query, args...).Find(dest).Error
}
