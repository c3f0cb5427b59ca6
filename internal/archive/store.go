package archive

import (
	"context"

	"github.com/eleven-am/auteur/internal/shared"
	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 200
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Record{})
}

func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = shared.NewID("ins_")
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// Recent returns the newest records first. An empty sessionID spans all
// sessions.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	q := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}

	var records []*Record
	err := q.Find(&records).Error
	return records, err
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	result := s.db.WithContext(ctx).Delete(&Record{}, "session_id = ?", sessionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
