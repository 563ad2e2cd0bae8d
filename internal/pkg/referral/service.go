package referral

import (
	"errors"
	"strconv"
	"strings"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/app/repository"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/env"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/keylock"
	"gorm.io/gorm"
)

const (
	defaultCapBuyer    = 4_000_000
	defaultCapNonBuyer = 2_000_000

	// maxAccrueAttempts bounds the compare-and-set retry loop under heavy
	// contention on one parent address.
	maxAccrueAttempts = 16
)

// Caps are the maximum cumulative reward amounts per referrer class. All
// amounts are non-negative integers; no floating point anywhere.
type Caps struct {
	Buyer    int64
	NonBuyer int64
}

// CapsFromEnv reads the reward caps from environment configuration,
// truncating malformed values to the defaults.
func CapsFromEnv() Caps {
	return Caps{
		Buyer:    parseCap(env.GetEnv("REWARD_CAP_BUYER", ""), defaultCapBuyer),
		NonBuyer: parseCap(env.GetEnv("REWARD_CAP_NON_BUYER", ""), defaultCapNonBuyer),
	}
}

func parseCap(raw string, def int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// RedeemResult is the outcome of a promotion-code redemption.
type RedeemResult struct {
	Valid         bool   `json:"valid"`
	ParentAddress string `json:"parent_address,omitempty"`
	// ParentSet is false when the child already had a parent; the first
	// redemption wins and later ones leave the link untouched.
	ParentSet bool `json:"parent_set"`
}

// Increment is a computed reward step for a referring address.
type Increment struct {
	AppendAmount int64 `json:"append_amount"`
	Reward       bool  `json:"reward"`
	MaxReward    int64 `json:"max_reward"`
	CurrentTotal int64 `json:"current_total"`
}

// Service maintains the promotion-code referral graph and the capped reward
// accumulators.
type Service struct {
	codes    repository.PromotionCodeRepository
	accounts repository.UserAccountRepository
	locks    *keylock.KeyLock
}

// NewService creates a referral service from injected repositories.
func NewService(codes repository.PromotionCodeRepository, accounts repository.UserAccountRepository) *Service {
	return &Service{
		codes:    codes,
		accounts: accounts,
		locks:    keylock.New(),
	}
}

// NewServiceFromRepositories creates a referral service from the repository set.
func NewServiceFromRepositories(repos *repository.Repositories) *Service {
	return NewService(repos.PromotionCode, repos.UserAccount)
}

// IssueCode returns the address's promotion code, generating and persisting
// one on first call. Issuance is idempotent: concurrent and repeated calls
// converge on a single code per address. Completion gating happens at the
// call site, not here.
func (s *Service) IssueCode(userAddress string) (string, error) {
	address := strings.TrimSpace(userAddress)
	if address == "" {
		return "", apperr.InvalidInput("user address is required")
	}

	code, err := GenerateCode(models.PromotionCodeLength)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUpstreamError, "code generation failed", err)
	}

	_, stored, err := s.codes.CreateIfNotExists(&models.PromotionCode{
		UserAddress: address,
		Code:        code,
	})
	if err != nil {
		return "", apperr.StorageUnavailable("persisting promotion code failed", err)
	}
	return stored.Code, nil
}

// RedeemCode links the child address to the code owner's address. An unknown
// code yields Valid=false without an error. An existing parent link is never
// overwritten (first redemption wins).
func (s *Service) RedeemCode(childAddress, code string) (*RedeemResult, error) {
	child := strings.TrimSpace(childAddress)
	if child == "" || strings.TrimSpace(code) == "" {
		return nil, apperr.InvalidInput("child address and code are required")
	}

	row, err := s.codes.GetByCode(strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RedeemResult{Valid: false}, nil
		}
		return nil, apperr.StorageUnavailable("promotion code lookup failed", err)
	}

	set, err := s.accounts.SetParentIfUnset(child, row.UserAddress)
	if err != nil {
		return nil, apperr.StorageUnavailable("persisting referral parent failed", err)
	}

	return &RedeemResult{Valid: true, ParentAddress: row.UserAddress, ParentSet: set}, nil
}

// ComputeRewardIncrement calculates how much of a proposed reward fits under
// the parent's cap. The cap is selected by the parent's purchase flag; an
// unknown flag counts as non-buyer. The increment is never negative.
func (s *Service) ComputeRewardIncrement(parentAddress string, proposedAmount int64, caps Caps) (*Increment, error) {
	address := strings.TrimSpace(parentAddress)
	if address == "" {
		return nil, apperr.InvalidInput("parent address is required")
	}
	if proposedAmount < 0 {
		return nil, apperr.InvalidInput("proposed amount must be non-negative")
	}

	maxReward, err := s.capFor(address, caps)
	if err != nil {
		return nil, err
	}

	current, err := s.currentTotal(address)
	if err != nil {
		return nil, err
	}

	inc := &Increment{MaxReward: maxReward, CurrentTotal: current}
	if current < maxReward {
		room := maxReward - current
		if proposedAmount < room {
			inc.AppendAmount = proposedAmount
		} else {
			inc.AppendAmount = room
		}
	}
	inc.Reward = inc.AppendAmount > 0
	return inc, nil
}

// ApplyRewardIncrement writes the new total, conditioned on the previously
// observed one. A false return means a concurrent writer advanced the total
// first and the caller must recompute.
func (s *Service) ApplyRewardIncrement(parentAddress string, previous, next int64) (bool, error) {
	if next < previous {
		return false, apperr.InvalidInput("reward total must not decrease")
	}
	ok, err := s.codes.CompareAndSetRewardTotal(strings.TrimSpace(parentAddress), previous, next)
	if err != nil {
		return false, apperr.StorageUnavailable("persisting reward total failed", err)
	}
	return ok, nil
}

// AccrueReward is the atomic compute+apply pair: it retries the conditional
// write until it lands or the cap is reached. The per-address lock keeps
// in-process callers from spinning against each other; the compare-and-set
// covers writers in other processes.
func (s *Service) AccrueReward(parentAddress string, proposedAmount int64, caps Caps) (*Increment, error) {
	address := strings.TrimSpace(parentAddress)
	if address == "" {
		return nil, apperr.InvalidInput("parent address is required")
	}

	unlock := s.locks.Lock(address)
	defer unlock()

	// The conditional write below targets the parent's code row; without one
	// there is nothing to accrue onto.
	if _, err := s.codes.GetByAddress(address); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("parent has no promotion code")
		}
		return nil, apperr.StorageUnavailable("promotion code lookup failed", err)
	}

	for attempt := 0; attempt < maxAccrueAttempts; attempt++ {
		inc, err := s.ComputeRewardIncrement(address, proposedAmount, caps)
		if err != nil {
			return nil, err
		}
		if !inc.Reward {
			return inc, nil
		}

		ok, err := s.ApplyRewardIncrement(address, inc.CurrentTotal, inc.CurrentTotal+inc.AppendAmount)
		if err != nil {
			return nil, err
		}
		if ok {
			return inc, nil
		}
	}
	return nil, apperr.StateConflict("reward total contention, retry")
}

func (s *Service) capFor(address string, caps Caps) (int64, error) {
	account, err := s.accounts.GetByAddress(address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return caps.NonBuyer, nil
		}
		return 0, apperr.StorageUnavailable("account lookup failed", err)
	}
	if account.Purchase != nil && *account.Purchase {
		return caps.Buyer, nil
	}
	return caps.NonBuyer, nil
}

func (s *Service) currentTotal(address string) (int64, error) {
	row, err := s.codes.GetByAddress(address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperr.StorageUnavailable("promotion code lookup failed", err)
	}
	return row.TotalRewardAmount, nil
}
