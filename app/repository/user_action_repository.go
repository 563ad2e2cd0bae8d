package repository

import (
	"time"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userActionRepository implements the UserActionRepository interface
type userActionRepository struct {
	db *gorm.DB
}

// NewUserActionRepository creates a new user action record repository instance
func NewUserActionRepository(db *gorm.DB) UserActionRepository {
	return &userActionRepository{db: db}
}

// Upsert writes the latest outcome for the record's (actor, target, action)
// key. CreatedAt is bumped explicitly so the freshness window restarts on
// every write, matching last-write-wins semantics.
func (r *userActionRepository) Upsert(record *models.UserActionRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "actor_id"},
			{Name: "target_id"},
			{Name: "action_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"endpoint_url",
			"response_text",
			"error_text",
			"created_at",
		}),
	}).Create(record).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("actor_id = ? AND target_id = ? AND action_type = ?",
		record.ActorID, record.TargetID, record.ActionType).First(record).Error
}

// GetByKey retrieves the current record for one exact key. An empty target
// id drops the target from the key and returns the actor's most recent
// record of that action type.
func (r *userActionRepository) GetByKey(actorID, targetID, actionType string) (*models.UserActionRecord, error) {
	query := r.db.Where("actor_id = ? AND action_type = ?", actorID, actionType)
	if targetID != "" {
		query = query.Where("target_id = ?", targetID)
	}

	var record models.UserActionRecord
	err := query.Order("created_at DESC").First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DistinctSuccessfulActionTypes returns every action type the actor has at
// least one successful record for, regardless of recency.
func (r *userActionRepository) DistinctSuccessfulActionTypes(actorID string) ([]string, error) {
	var types []string
	err := r.db.Model(&models.UserActionRecord{}).
		Where("actor_id = ? AND response_text <> '' AND error_text = ''", actorID).
		Distinct("action_type").
		Pluck("action_type", &types).Error
	return types, err
}
