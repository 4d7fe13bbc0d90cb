package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SQLStore keeps collections in the "collections" table created by the db
// package migrations. It works with both the postgres and sqlite dialects.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

type collectionRow struct {
	Name      string
	Payload   string
	UpdatedAt time.Time
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var rows []collectionRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT name, payload, updated_at
		FROM collections
		WHERE name = ?
		LIMIT 1
	`, key).Scan(&rows).Error
	if err != nil {
		return nil, false, fmt.Errorf("load collection %s: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return []byte(rows[0].Payload), true, nil
}

func (s *SQLStore) Save(ctx context.Context, key string, payload []byte) error {
	err := s.db.WithContext(ctx).Exec(`
		INSERT INTO collections (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, string(payload), s.now().UTC()).Error
	if err != nil {
		return fmt.Errorf("save collection %s: %w", key, err)
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
