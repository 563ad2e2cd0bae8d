package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// UserAccount is the per-wallet account row. Purchase is a tri-state: nil
// means the eligibility service has never been asked, a stored bool is
// permanent (eligibility is treated as immutable once observed).
// ParentAddress is set on the first promotion-code redemption and never
// overwritten afterwards.
type UserAccount struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserAddress   string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"user_address" validate:"required,max=128"`
	Purchase      *bool     `gorm:"default:null" json:"purchase,omitempty"`
	ParentAddress string    `gorm:"type:varchar(128);default:null;index" json:"parent_address,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *UserAccount) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

// HasParent reports whether a referral parent is already recorded.
func (a *UserAccount) HasParent() bool {
	return a.ParentAddress != ""
}
