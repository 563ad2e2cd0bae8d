package repository

import (
	"github.com/MarvinHoffmann/DropGate/app/models"
	"gorm.io/gorm"
)

// ActionLogRepository defines database operations on the global audit stream.
type ActionLogRepository interface {
	Create(entry *models.ActionLog) error
	ListByActor(actorID string, offset, limit int) ([]models.ActionLog, error)
	CountByActor(actorID string) (int64, error)
}

// UserActionRepository defines operations on the per-user current-state
// records used for idempotency and status queries.
type UserActionRepository interface {
	Upsert(record *models.UserActionRecord) error
	GetByKey(actorID, targetID, actionType string) (*models.UserActionRecord, error)
	DistinctSuccessfulActionTypes(actorID string) ([]string, error)
}

// AirdropClaimRepository defines operations on claim markers.
type AirdropClaimRepository interface {
	Exists(actorID, userAddress string) (bool, error)
	Upsert(claim *models.AirdropClaim) error
}

// PromotionCodeRepository defines operations on referral codes and their
// reward accumulators.
type PromotionCodeRepository interface {
	GetByAddress(userAddress string) (*models.PromotionCode, error)
	GetByCode(code string) (*models.PromotionCode, error)
	CreateIfNotExists(code *models.PromotionCode) (bool, *models.PromotionCode, error)
	// CompareAndSetRewardTotal writes next only when the stored total still
	// equals previous. Returns false when another writer got there first.
	CompareAndSetRewardTotal(userAddress string, previous, next int64) (bool, error)
	// SetRewardTotal overwrites the stored total. Reserved for callers whose
	// source is authoritative (the external distribution ledger).
	SetRewardTotal(userAddress string, total int64) error
}

// UserAccountRepository defines operations on per-wallet accounts.
type UserAccountRepository interface {
	GetByAddress(userAddress string) (*models.UserAccount, error)
	EnsureByAddress(userAddress string) (*models.UserAccount, error)
	SetPurchase(userAddress string, purchase bool) error
	// SetParentIfUnset records the referral parent only when none is stored
	// yet. Returns false when a parent already existed.
	SetParentIfUnset(userAddress, parentAddress string) (bool, error)
}

// SubscriptionRepository defines operations on newsletter signups.
type SubscriptionRepository interface {
	Upsert(info *models.SubscriptionInfo) error
	Count() (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	ActionLog     ActionLogRepository
	UserAction    UserActionRepository
	AirdropClaim  AirdropClaimRepository
	PromotionCode PromotionCodeRepository
	UserAccount   UserAccountRepository
	Subscription  SubscriptionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		ActionLog:     NewActionLogRepository(db),
		UserAction:    NewUserActionRepository(db),
		AirdropClaim:  NewAirdropClaimRepository(db),
		PromotionCode: NewPromotionCodeRepository(db),
		UserAccount:   NewUserAccountRepository(db),
		Subscription:  NewSubscriptionRepository(db),
	}
}
