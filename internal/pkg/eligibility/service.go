package eligibility

import (
	"context"
	"errors"
	"strings"

	"github.com/MarvinHoffmann/DropGate/app/repository"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/keylock"
	"gorm.io/gorm"
)

// EligibilityClient is the external lookup surface; tests substitute a
// counting fake.
type EligibilityClient interface {
	CheckAddress(ctx context.Context, address string) (bool, error)
}

// Service is the permanent purchase cache: each address is asked upstream at
// most once, then served from the stored flag forever. Eligibility is treated
// as immutable once observed.
type Service struct {
	accounts repository.UserAccountRepository
	client   EligibilityClient
	locks    *keylock.KeyLock
}

// NewService creates an eligibility service.
func NewService(accounts repository.UserAccountRepository, client EligibilityClient) *Service {
	return &Service{
		accounts: accounts,
		client:   client,
		locks:    keylock.New(),
	}
}

// CheckPurchase returns the address's purchase flag, querying the external
// service only when no flag is stored yet. The per-address lock keeps
// concurrent first-time queries down to one upstream call.
func (s *Service) CheckPurchase(ctx context.Context, userAddress string) (bool, error) {
	address := strings.TrimSpace(userAddress)
	if address == "" {
		return false, apperr.InvalidInput("user address is required")
	}

	unlock := s.locks.Lock(address)
	defer unlock()

	account, err := s.accounts.GetByAddress(address)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, apperr.StorageUnavailable("account lookup failed", err)
	}
	if account != nil && account.Purchase != nil {
		return *account.Purchase, nil
	}

	purchase, err := s.client.CheckAddress(ctx, address)
	if err != nil {
		return false, err
	}

	if err := s.accounts.SetPurchase(address, purchase); err != nil {
		return false, apperr.StorageUnavailable("persisting purchase flag failed", err)
	}
	return purchase, nil
}
