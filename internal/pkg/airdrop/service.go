package airdrop

import (
	"context"
	"errors"
	"strings"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/app/repository"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/keylock"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/referral"
	"gorm.io/gorm"
)

// DistributionClient is the external payout surface; tests substitute a fake.
type DistributionClient interface {
	Distribute(ctx context.Context, address string, amount int64) (int64, error)
}

// ClaimResult is the outcome of a one-time claim.
type ClaimResult struct {
	// AirdropCount is the external service's cumulative total, reported
	// unmodified even when it exceeds the local cap.
	AirdropCount int64 `json:"airdrop_count"`
	// Persisted is false when the upstream count exceeded the cap and was
	// not written into the local accumulator.
	Persisted   bool  `json:"persisted"`
	CapExceeded bool  `json:"cap_exceeded"`
	MaxReward   int64 `json:"max_reward"`
}

// Service performs the one-time airdrop claim: duplicate detection, the
// external distribution call, and the cap-checked write-back of the
// cumulative total.
type Service struct {
	claims   repository.AirdropClaimRepository
	codes    repository.PromotionCodeRepository
	accounts repository.UserAccountRepository
	client   DistributionClient
	caps     referral.Caps
	locks    *keylock.KeyLock
}

// NewService creates an airdrop claim service.
func NewService(
	claims repository.AirdropClaimRepository,
	codes repository.PromotionCodeRepository,
	accounts repository.UserAccountRepository,
	client DistributionClient,
	caps referral.Caps,
) *Service {
	return &Service{
		claims:   claims,
		codes:    codes,
		accounts: accounts,
		client:   client,
		caps:     caps,
		locks:    keylock.New(),
	}
}

// Claim pays out once per (actor, address) pair. A repeated claim is a
// StateConflict. The count returned by the distribution service is persisted
// as the new running total only when it stays under the applicable cap; an
// exceeding count is still reported to the caller unchanged.
func (s *Service) Claim(ctx context.Context, actorID, userAddress string, amount int64) (*ClaimResult, error) {
	actor := strings.TrimSpace(actorID)
	address := strings.TrimSpace(userAddress)
	if actor == "" || address == "" {
		return nil, apperr.InvalidInput("actor id and user address are required")
	}
	if amount <= 0 {
		return nil, apperr.InvalidInput("amount must be positive")
	}

	unlock := s.locks.Lock(actor + "|" + address)
	defer unlock()

	claimed, err := s.claims.Exists(actor, address)
	if err != nil {
		return nil, apperr.StorageUnavailable("claim lookup failed", err)
	}
	if claimed {
		return nil, apperr.StateConflict("airdrop already claimed")
	}

	count, err := s.client.Distribute(ctx, address, amount)
	if err != nil {
		return nil, err
	}

	maxReward, err := s.capFor(address)
	if err != nil {
		return nil, err
	}

	result := &ClaimResult{AirdropCount: count, MaxReward: maxReward}
	if count <= maxReward {
		// The running total lives on the promotion code row; a claimant who
		// never issued a code gets one here so the write has a home.
		if err := s.ensureCodeRow(address); err != nil {
			return nil, err
		}
		if err := s.codes.SetRewardTotal(address, count); err != nil {
			return nil, apperr.StorageUnavailable("persisting reward total failed", err)
		}
		result.Persisted = true
	} else {
		result.CapExceeded = true
	}

	if err := s.claims.Upsert(&models.AirdropClaim{ActorID: actor, UserAddress: address}); err != nil {
		return nil, apperr.StorageUnavailable("persisting claim failed", err)
	}
	return result, nil
}

func (s *Service) ensureCodeRow(address string) error {
	_, err := s.codes.GetByAddress(address)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.StorageUnavailable("promotion code lookup failed", err)
	}

	code, err := referral.GenerateCode(models.PromotionCodeLength)
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstreamError, "code generation failed", err)
	}
	if _, _, err := s.codes.CreateIfNotExists(&models.PromotionCode{UserAddress: address, Code: code}); err != nil {
		return apperr.StorageUnavailable("persisting promotion code failed", err)
	}
	return nil
}

func (s *Service) capFor(address string) (int64, error) {
	account, err := s.accounts.GetByAddress(address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.caps.NonBuyer, nil
		}
		return 0, apperr.StorageUnavailable("account lookup failed", err)
	}
	if account.Purchase != nil && *account.Purchase {
		return s.caps.Buyer, nil
	}
	return s.caps.NonBuyer, nil
}
