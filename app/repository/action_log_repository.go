package repository

import (
	"github.com/MarvinHoffmann/DropGate/app/models"
	"gorm.io/gorm"
)

// actionLogRepository implements the ActionLogRepository interface
type actionLogRepository struct {
	db *gorm.DB
}

// NewActionLogRepository creates a new audit stream repository instance
func NewActionLogRepository(db *gorm.DB) ActionLogRepository {
	return &actionLogRepository{db: db}
}

// Create appends one attempt to the audit stream. Rows are immutable; there
// is deliberately no update path in this repository.
func (r *actionLogRepository) Create(entry *models.ActionLog) error {
	return r.db.Create(entry).Error
}

// ListByActor retrieves a paginated slice of the actor's audit entries,
// newest first.
func (r *actionLogRepository) ListByActor(actorID string, offset, limit int) ([]models.ActionLog, error) {
	var entries []models.ActionLog
	err := r.db.Where("actor_id = ?", actorID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

// CountByActor returns the number of audit entries for an actor
func (r *actionLogRepository) CountByActor(actorID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ActionLog{}).Where("actor_id = ?", actorID).Count(&count).Error
	return count, err
}
