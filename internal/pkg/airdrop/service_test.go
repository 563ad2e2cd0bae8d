package airdrop

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/referral"
)

type claimKey struct {
	actor, address string
}

type fakeClaimRepo struct {
	mu     sync.Mutex
	claims map[claimKey]struct{}
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{claims: make(map[claimKey]struct{})}
}

func (f *fakeClaimRepo) Exists(actorID, userAddress string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.claims[claimKey{actorID, userAddress}]
	return ok, nil
}

func (f *fakeClaimRepo) Upsert(claim *models.AirdropClaim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims[claimKey{claim.ActorID, claim.UserAddress}] = struct{}{}
	return nil
}

type fakeCodeRepo struct {
	mu        sync.Mutex
	byAddress map[string]*models.PromotionCode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{byAddress: make(map[string]*models.PromotionCode)}
}

func (f *fakeCodeRepo) GetByAddress(userAddress string) (*models.PromotionCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.byAddress[userAddress]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeCodeRepo) GetByCode(code string) (*models.PromotionCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.byAddress {
		if row.Code == code {
			cp := *row
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCodeRepo) CreateIfNotExists(code *models.PromotionCode) (bool, *models.PromotionCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byAddress[code.UserAddress]; ok {
		cp := *existing
		return false, &cp, nil
	}
	cp := *code
	f.byAddress[code.UserAddress] = &cp
	out := cp
	return true, &out, nil
}

func (f *fakeCodeRepo) CompareAndSetRewardTotal(userAddress string, previous, next int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.byAddress[userAddress]
	if !ok || row.TotalRewardAmount != previous {
		return false, nil
	}
	row.TotalRewardAmount = next
	return true, nil
}

func (f *fakeCodeRepo) SetRewardTotal(userAddress string, total int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.byAddress[userAddress]; ok {
		row.TotalRewardAmount = total
	}
	return nil
}

type fakeAccountRepo struct {
	mu        sync.Mutex
	byAddress map[string]*models.UserAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byAddress: make(map[string]*models.UserAccount)}
}

func (f *fakeAccountRepo) GetByAddress(userAddress string) (*models.UserAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.byAddress[userAddress]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeAccountRepo) EnsureByAddress(userAddress string) (*models.UserAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.byAddress[userAddress]; ok {
		return row, nil
	}
	row := &models.UserAccount{UserAddress: userAddress}
	f.byAddress[userAddress] = row
	return row, nil
}

func (f *fakeAccountRepo) SetPurchase(userAddress string, purchase bool) error {
	row, _ := f.EnsureByAddress(userAddress)
	f.mu.Lock()
	defer f.mu.Unlock()
	row.Purchase = &purchase
	return nil
}

func (f *fakeAccountRepo) SetParentIfUnset(userAddress, parentAddress string) (bool, error) {
	row, _ := f.EnsureByAddress(userAddress)
	f.mu.Lock()
	defer f.mu.Unlock()
	if row.ParentAddress != "" {
		return false, nil
	}
	row.ParentAddress = parentAddress
	return true, nil
}

type fakeDistributionClient struct {
	mu    sync.Mutex
	calls int
	count int64
	err   error
}

func (f *fakeDistributionClient) Distribute(ctx context.Context, address string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

func testCaps() referral.Caps {
	return referral.Caps{Buyer: 4_000_000, NonBuyer: 2_000_000}
}

func newTestService(client *fakeDistributionClient) (*Service, *fakeClaimRepo, *fakeCodeRepo, *fakeAccountRepo) {
	claims := newFakeClaimRepo()
	codes := newFakeCodeRepo()
	accounts := newFakeAccountRepo()
	return NewService(claims, codes, accounts, client, testCaps()), claims, codes, accounts
}

func TestClaimPersistsCountUnderCap(t *testing.T) {
	client := &fakeDistributionClient{count: 150_000}
	svc, claims, codes, _ := newTestService(client)

	result, err := svc.Claim(context.Background(), "actor-1", "0xaddr", 100_000)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), result.AirdropCount)
	assert.True(t, result.Persisted)
	assert.False(t, result.CapExceeded)

	claimed, err := claims.Exists("actor-1", "0xaddr")
	require.NoError(t, err)
	assert.True(t, claimed)

	row, err := codes.GetByAddress("0xaddr")
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), row.TotalRewardAmount)
}

func TestClaimDuplicateIsConflict(t *testing.T) {
	client := &fakeDistributionClient{count: 150_000}
	svc, _, _, _ := newTestService(client)

	_, err := svc.Claim(context.Background(), "actor-1", "0xaddr", 100_000)
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), "actor-1", "0xaddr", 100_000)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeStateConflict, apperr.CodeOf(err))
	assert.Equal(t, 1, client.calls)
}

func TestClaimCapExceededReportsUnmodifiedCount(t *testing.T) {
	client := &fakeDistributionClient{count: 2_500_000}
	svc, claims, codes, _ := newTestService(client)

	result, err := svc.Claim(context.Background(), "actor-1", "0xaddr", 100_000)
	require.NoError(t, err)
	assert.Equal(t, int64(2_500_000), result.AirdropCount)
	assert.False(t, result.Persisted)
	assert.True(t, result.CapExceeded)
	assert.Equal(t, int64(2_000_000), result.MaxReward)

	// The exceeding count never lands in the local accumulator, but the
	// claim marker is still written.
	_, err = codes.GetByAddress("0xaddr")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	claimed, err := claims.Exists("actor-1", "0xaddr")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaimBuyerGetsHigherCap(t *testing.T) {
	client := &fakeDistributionClient{count: 2_500_000}
	svc, _, codes, accounts := newTestService(client)
	require.NoError(t, accounts.SetPurchase("0xbuyer", true))

	result, err := svc.Claim(context.Background(), "actor-1", "0xbuyer", 100_000)
	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.Equal(t, int64(4_000_000), result.MaxReward)

	row, err := codes.GetByAddress("0xbuyer")
	require.NoError(t, err)
	assert.Equal(t, int64(2_500_000), row.TotalRewardAmount)
}

func TestClaimDistributionFailureLeavesNoClaim(t *testing.T) {
	client := &fakeDistributionClient{err: apperr.Upstream("airdrop request failed", nil)}
	svc, claims, _, _ := newTestService(client)

	_, err := svc.Claim(context.Background(), "actor-1", "0xaddr", 100_000)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstreamError, apperr.CodeOf(err))

	claimed, err := claims.Exists("actor-1", "0xaddr")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestClaimValidatesInput(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeDistributionClient{})

	_, err := svc.Claim(context.Background(), "", "0xaddr", 100)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))

	_, err = svc.Claim(context.Background(), "actor-1", "0xaddr", 0)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestClaimConcurrentOnlyOneSucceeds(t *testing.T) {
	client := &fakeDistributionClient{count: 150_000}
	svc, _, _, _ := newTestService(client)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.Claim(context.Background(), "actor-1", "0xaddr", 100_000); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, client.calls)
}
