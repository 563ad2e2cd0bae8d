package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SubscriptionInfo stores a newsletter-style signup. Repeat submissions with
// the same email/name/info refresh CreatedAt instead of inserting a duplicate.
type SubscriptionInfo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(191);not null;index:ux_subscription_infos_key,unique,priority:1" json:"email" validate:"required,email,max=191"`
	Name      string    `gorm:"type:varchar(150);not null;index:ux_subscription_infos_key,unique,priority:2" json:"name" validate:"required,max=150"`
	Info      string    `gorm:"type:varchar(191);not null;default:'';index:ux_subscription_infos_key,unique,priority:3" json:"info" validate:"max=191"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *SubscriptionInfo) Validate() error {
	v := validator.New()

	return v.Struct(s)
}
