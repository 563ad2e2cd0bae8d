package repository

import (
	"time"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Upsert stores a signup, refreshing CreatedAt on repeat submission instead
// of inserting a duplicate row.
func (r *subscriptionRepository) Upsert(info *models.SubscriptionInfo) error {
	info.CreatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "email"},
			{Name: "name"},
			{Name: "info"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"created_at"}),
	}).Create(info).Error
}

// Count returns the total number of signups
func (r *subscriptionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionInfo{}).Count(&count).Error
	return count, err
}
