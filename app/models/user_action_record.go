package models

import "time"

// UserActionRecord holds the most recent outcome for one exact
// (actor, target, action type) tuple. Writes are upserts, so repeated checks
// against the same target never create duplicates. The composite unique index
// is what makes the idempotency window work.
type UserActionRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActorID      string    `gorm:"type:varchar(64);not null;index:ux_user_action_records_key,unique,priority:1" json:"actor_id"`
	TargetID     string    `gorm:"type:varchar(64);not null;default:'';index:ux_user_action_records_key,unique,priority:2" json:"target_id"`
	ActionType   string    `gorm:"type:varchar(32);not null;index:ux_user_action_records_key,unique,priority:3" json:"action_type"`
	EndpointURL  string    `gorm:"type:varchar(512);not null" json:"endpoint_url"`
	ResponseText string    `gorm:"type:longtext" json:"response_text,omitempty"`
	ErrorText    string    `gorm:"type:text" json:"error_text,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Succeeded reports whether the record holds a successful provider outcome.
func (r *UserActionRecord) Succeeded() bool {
	return r.ResponseText != "" && r.ErrorText == ""
}

// Failed reports whether the record holds a terminal provider failure.
func (r *UserActionRecord) Failed() bool {
	return r.ErrorText != "" && r.ResponseText == ""
}
