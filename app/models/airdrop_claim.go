package models

import "time"

// AirdropClaim marks that an actor already claimed for a wallet address.
// Presence of a row means "claimed"; the row is upserted on claim and never
// deleted.
type AirdropClaim struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     string    `gorm:"type:varchar(64);not null;index:ux_airdrop_claims_actor_address,unique,priority:1" json:"actor_id"`
	UserAddress string    `gorm:"type:varchar(128);not null;index:ux_airdrop_claims_actor_address,unique,priority:2" json:"user_address"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
