package repository

import (
	"github.com/MarvinHoffmann/DropGate/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// airdropClaimRepository implements the AirdropClaimRepository interface
type airdropClaimRepository struct {
	db *gorm.DB
}

// NewAirdropClaimRepository creates a new airdrop claim repository instance
func NewAirdropClaimRepository(db *gorm.DB) AirdropClaimRepository {
	return &airdropClaimRepository{db: db}
}

// Exists reports whether any claim row matches the (actor, address) pair.
func (r *airdropClaimRepository) Exists(actorID, userAddress string) (bool, error) {
	var count int64
	err := r.db.Model(&models.AirdropClaim{}).
		Where("actor_id = ? AND user_address = ?", actorID, userAddress).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Upsert records a claim. A concurrent duplicate collapses onto the existing
// row via the unique index.
func (r *airdropClaimRepository) Upsert(claim *models.AirdropClaim) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "actor_id"},
			{Name: "user_address"},
		},
		DoNothing: true,
	}).Create(claim).Error
}
