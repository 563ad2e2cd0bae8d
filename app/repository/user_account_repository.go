package repository

import (
	"github.com/MarvinHoffmann/DropGate/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userAccountRepository implements the UserAccountRepository interface
type userAccountRepository struct {
	db *gorm.DB
}

// NewUserAccountRepository creates a new user account repository instance
func NewUserAccountRepository(db *gorm.DB) UserAccountRepository {
	return &userAccountRepository{db: db}
}

// GetByAddress retrieves an account by its wallet address
func (r *userAccountRepository) GetByAddress(userAddress string) (*models.UserAccount, error) {
	var account models.UserAccount
	err := r.db.Where("user_address = ?", userAddress).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// EnsureByAddress returns the account row, creating an empty one when the
// address has never been seen.
func (r *userAccountRepository) EnsureByAddress(userAddress string) (*models.UserAccount, error) {
	account := &models.UserAccount{UserAddress: userAddress}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_address"}},
		DoNothing: true,
	}).Create(account).Error; err != nil {
		return nil, err
	}

	return r.GetByAddress(userAddress)
}

// SetPurchase persists the observed eligibility flag, creating the account
// row when absent.
func (r *userAccountRepository) SetPurchase(userAddress string, purchase bool) error {
	account := &models.UserAccount{UserAddress: userAddress, Purchase: &purchase}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"purchase",
			"updated_at",
		}),
	}).Create(account).Error
}

// SetParentIfUnset records the referral parent only when none is stored yet.
// First redemption wins; later redemptions leave the row untouched.
func (r *userAccountRepository) SetParentIfUnset(userAddress, parentAddress string) (bool, error) {
	if _, err := r.EnsureByAddress(userAddress); err != nil {
		return false, err
	}

	tx := r.db.Model(&models.UserAccount{}).
		Where("user_address = ? AND (parent_address IS NULL OR parent_address = '')", userAddress).
		Update("parent_address", parentAddress)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
