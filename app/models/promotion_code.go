package models

import "time"

// PromotionCodeLength is the fixed length of generated referral codes.
const PromotionCodeLength = 16

// PromotionCode is the referral code owned by a user address, plus the
// cumulative reward that address has accrued from redeeming children.
// TotalRewardAmount only ever grows and is capped by the caller-supplied
// buyer/non-buyer maximum.
type PromotionCode struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserAddress       string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"user_address"`
	Code              string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	TotalRewardAmount int64     `gorm:"not null;default:0" json:"total_reward_amount"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
