package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborlane/storefront-backend/internal/cart"
	"github.com/harborlane/storefront-backend/pkg/db/models"
)

// SQLiteStore is the file-backed cart storage driver. Snapshots are upserted
// by session id; only the serialized line list is stored.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore migrates the snapshot table and returns the driver.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm handle is required")
	}
	if err := db.AutoMigrate(&models.CartSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrating cart snapshots: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the persisted lines, or (nil, nil) for an unknown session.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) ([]cart.Line, error) {
	var snapshot models.CartSnapshot
	err := s.db.WithContext(ctx).First(&snapshot, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}
	var lines []cart.Line
	if err := json.Unmarshal([]byte(snapshot.Lines), &lines); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	return lines, nil
}

// Save upserts the session's snapshot with the serialized line list.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, lines []cart.Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	snapshot := models.CartSnapshot{
		SessionID: sessionID,
		Lines:     string(payload),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"lines", "updated_at"}),
	}).Create(&snapshot).Error
}

// Delete removes the session's snapshot.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Delete(&models.CartSnapshot{}, "session_id = ?", sessionID).Error
}
