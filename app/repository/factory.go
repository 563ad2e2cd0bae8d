package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetActionLogRepository returns the audit stream repository instance
func (f *Factory) GetActionLogRepository() ActionLogRepository {
	return f.GetRepositories().ActionLog
}

// GetUserActionRepository returns the user action record repository instance
func (f *Factory) GetUserActionRepository() UserActionRepository {
	return f.GetRepositories().UserAction
}

// GetAirdropClaimRepository returns the airdrop claim repository instance
func (f *Factory) GetAirdropClaimRepository() AirdropClaimRepository {
	return f.GetRepositories().AirdropClaim
}

// GetPromotionCodeRepository returns the promotion code repository instance
func (f *Factory) GetPromotionCodeRepository() PromotionCodeRepository {
	return f.GetRepositories().PromotionCode
}

// GetUserAccountRepository returns the user account repository instance
func (f *Factory) GetUserAccountRepository() UserAccountRepository {
	return f.GetRepositories().UserAccount
}

// GetSubscriptionRepository returns the subscription repository instance
func (f *Factory) GetSubscriptionRepository() SubscriptionRepository {
	return f.GetRepositories().Subscription
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
