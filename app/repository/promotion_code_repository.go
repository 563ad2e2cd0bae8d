package repository

import (
	"github.com/MarvinHoffmann/DropGate/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// promotionCodeRepository implements the PromotionCodeRepository interface
type promotionCodeRepository struct {
	db *gorm.DB
}

// NewPromotionCodeRepository creates a new promotion code repository instance
func NewPromotionCodeRepository(db *gorm.DB) PromotionCodeRepository {
	return &promotionCodeRepository{db: db}
}

// GetByAddress retrieves the code row owned by a user address
func (r *promotionCodeRepository) GetByAddress(userAddress string) (*models.PromotionCode, error) {
	var code models.PromotionCode
	err := r.db.Where("user_address = ?", userAddress).First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// GetByCode retrieves the code row by its code string
func (r *promotionCodeRepository) GetByCode(code string) (*models.PromotionCode, error) {
	var row models.PromotionCode
	err := r.db.Where("code = ?", code).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateIfNotExists inserts the code unless the address already owns one.
// The stored row is returned either way, so concurrent issuance converges on
// a single code per address.
func (r *promotionCodeRepository) CreateIfNotExists(code *models.PromotionCode) (bool, *models.PromotionCode, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_address"}},
		DoNothing: true,
	}).Create(code)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PromotionCode
	if err := r.db.Where("user_address = ?", code.UserAddress).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// CompareAndSetRewardTotal writes next only when the stored total still
// equals previous. The conditional update is what keeps concurrent accruals
// from clobbering each other.
func (r *promotionCodeRepository) CompareAndSetRewardTotal(userAddress string, previous, next int64) (bool, error) {
	tx := r.db.Model(&models.PromotionCode{}).
		Where("user_address = ? AND total_reward_amount = ?", userAddress, previous).
		Update("total_reward_amount", next)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// SetRewardTotal overwrites the stored total with an externally authoritative
// value.
func (r *promotionCodeRepository) SetRewardTotal(userAddress string, total int64) error {
	return r.db.Model(&models.PromotionCode{}).
		Where("user_address = ?", userAddress).
		Update("total_reward_amount", total).Error
}
