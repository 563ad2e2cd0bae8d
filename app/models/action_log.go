package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionTypeFollow   = "follow"
	ActionTypeLike     = "like"
	ActionTypeRetweet  = "retweet"
	ActionTypeTweet    = "tweet"
	ActionTypeBookmark = "bookmark"

	ActionTypeCheckFollowed   = "check_followed"
	ActionTypeCheckLiked      = "check_liked"
	ActionTypeCheckRetweeted  = "check_retweeted"
	ActionTypeCheckBookmarked = "check_bookmarked"
	ActionTypeCheckTweeted    = "check_tweeted"
)

// WriteActionTypes is the closed set of provider write actions a campaign can
// require. Check variants are read-only and never part of a required set.
var WriteActionTypes = []string{
	ActionTypeFollow,
	ActionTypeLike,
	ActionTypeRetweet,
	ActionTypeTweet,
	ActionTypeBookmark,
}

// IsWriteActionType reports whether t is one of the provider write actions.
func IsWriteActionType(t string) bool {
	for _, w := range WriteActionTypes {
		if w == t {
			return true
		}
	}
	return false
}

// ActionLog is the global audit stream: one row per provider attempt, any
// actor, any outcome. Rows are immutable once written and never deduplicated.
type ActionLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventID        string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"event_id"`
	ActorID        string    `gorm:"type:varchar(64);not null;index" json:"actor_id"`
	TargetID       string    `gorm:"type:varchar(64);default:null;index" json:"target_id,omitempty"`
	ActionType     string    `gorm:"type:varchar(32);not null;index" json:"action_type"`
	EndpointURL    string    `gorm:"type:varchar(512);not null" json:"endpoint_url"`
	RequestPayload string    `gorm:"type:text" json:"request_payload,omitempty"`
	ResponseText   string    `gorm:"type:longtext" json:"response_text,omitempty"`
	ErrorText      string    `gorm:"type:text" json:"error_text,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// NewActionLog builds an audit row with a fresh event id.
func NewActionLog(actorID, targetID, actionType, endpointURL string) *ActionLog {
	return &ActionLog{
		EventID:     uuid.NewString(),
		ActorID:     actorID,
		TargetID:    targetID,
		ActionType:  actionType,
		EndpointURL: endpointURL,
	}
}
