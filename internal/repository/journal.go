package repository

import (
	"context"

	"sankalpa/internal/models"
	"sankalpa/internal/observability"

	"gorm.io/gorm"
)

// JournalRepository stores gratitude entries and reads the relapse log.
type JournalRepository interface {
	CreateDiaryEntry(ctx context.Context, entry *models.DiaryEntry) error
	ListDiaryEntries(ctx context.Context, userID uint, limit int) ([]*models.DiaryEntry, error)
	ListRelapses(ctx context.Context, userID uint, limit int) ([]*models.RelapseEntry, error)
}

type journalRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db, log: observability.NewRepoLogger("diary_entries")}
}

func (r *journalRepository) CreateDiaryEntry(ctx context.Context, entry *models.DiaryEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"entry_id": entry.ID, "user_id": entry.UserID})
	return nil
}

func (r *journalRepository) ListDiaryEntries(ctx context.Context, userID uint, limit int) ([]*models.DiaryEntry, error) {
	var entries []*models.DiaryEntry
	err := reader(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *journalRepository) ListRelapses(ctx context.Context, userID uint, limit int) ([]*models.RelapseEntry, error) {
	var entries []*models.RelapseEntry
	err := reader(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
