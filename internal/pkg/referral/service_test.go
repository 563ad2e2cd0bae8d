package referral

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
)

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
	cp.ID = uint(len(f.byAddress) + 1)
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
	return f.ensureLocked(userAddress), nil
}

func (f *fakeAccountRepo) ensureLocked(userAddress string) *models.UserAccount {
	if row, ok := f.byAddress[userAddress]; ok {
		return row
	}
	row := &models.UserAccount{ID: uint(len(f.byAddress) + 1), UserAddress: userAddress}
	f.byAddress[userAddress] = row
	return row
}

func (f *fakeAccountRepo) SetPurchase(userAddress string, purchase bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.ensureLocked(userAddress)
	row.Purchase = &purchase
	return nil
}

func (f *fakeAccountRepo) SetParentIfUnset(userAddress, parentAddress string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.ensureLocked(userAddress)
	if row.ParentAddress != "" {
		return false, nil
	}
	row.ParentAddress = parentAddress
	return true, nil
}

func testCaps() Caps {
	return Caps{Buyer: 4_000_000, NonBuyer: 2_000_000}
}

func TestIssueCodeIdempotent(t *testing.T) {
	svc := NewService(newFakeCodeRepo(), newFakeAccountRepo())

	first, err := svc.IssueCode("0xparent")
	require.NoError(t, err)
	assert.Len(t, first, models.PromotionCodeLength)

	second, err := svc.IssueCode("0xparent")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIssueCodeEmptyAddress(t *testing.T) {
	svc := NewService(newFakeCodeRepo(), newFakeAccountRepo())

	_, err := svc.IssueCode("  ")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestRedeemCodeUnknownIsNotAnError(t *testing.T) {
	accounts := newFakeAccountRepo()
	svc := NewService(newFakeCodeRepo(), accounts)

	result, err := svc.RedeemCode("0xchild", "nosuchcode")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	// An invalid code must leave no parent link behind.
	if account, err := accounts.GetByAddress("0xchild"); err == nil {
		assert.Empty(t, account.ParentAddress)
	}
}

func TestRedeemCodeFirstRedemptionWins(t *testing.T) {
	codes := newFakeCodeRepo()
	accounts := newFakeAccountRepo()
	svc := NewService(codes, accounts)

	codeA, err := svc.IssueCode("0xparent-a")
	require.NoError(t, err)
	codeB, err := svc.IssueCode("0xparent-b")
	require.NoError(t, err)

	first, err := svc.RedeemCode("0xchild", codeA)
	require.NoError(t, err)
	assert.True(t, first.Valid)
	assert.True(t, first.ParentSet)
	assert.Equal(t, "0xparent-a", first.ParentAddress)

	second, err := svc.RedeemCode("0xchild", codeB)
	require.NoError(t, err)
	assert.True(t, second.Valid)
	assert.False(t, second.ParentSet)

	account, err := accounts.GetByAddress("0xchild")
	require.NoError(t, err)
	assert.Equal(t, "0xparent-a", account.ParentAddress)
}

func TestComputeRewardIncrementCapsAppend(t *testing.T) {
	codes := newFakeCodeRepo()
	accounts := newFakeAccountRepo()
	svc := NewService(codes, accounts)

	_, err := svc.IssueCode("0xparent")
	require.NoError(t, err)
	require.NoError(t, codes.SetRewardTotal("0xparent", 1_950_000))

	inc, err := svc.ComputeRewardIncrement("0xparent", 100_000, testCaps())
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), inc.AppendAmount)
	assert.True(t, inc.Reward)
	assert.Equal(t, int64(2_000_000), inc.MaxReward)
	assert.Equal(t, int64(1_950_000), inc.CurrentTotal)
}

func TestComputeRewardIncrementAtCap(t *testing.T) {
	codes := newFakeCodeRepo()
	svc := NewService(codes, newFakeAccountRepo())

	_, err := svc.IssueCode("0xparent")
	require.NoError(t, err)
	require.NoError(t, codes.SetRewardTotal("0xparent", 2_000_000))

	inc, err := svc.ComputeRewardIncrement("0xparent", 100_000, testCaps())
	require.NoError(t, err)
	assert.Equal(t, int64(0), inc.AppendAmount)
	assert.False(t, inc.Reward)
}

func TestComputeRewardIncrementBuyerCap(t *testing.T) {
	codes := newFakeCodeRepo()
	accounts := newFakeAccountRepo()
	svc := NewService(codes, accounts)

	_, err := svc.IssueCode("0xbuyer")
	require.NoError(t, err)
	require.NoError(t, accounts.SetPurchase("0xbuyer", true))
	require.NoError(t, codes.SetRewardTotal("0xbuyer", 3_900_000))

	inc, err := svc.ComputeRewardIncrement("0xbuyer", 200_000, testCaps())
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), inc.AppendAmount)
	assert.Equal(t, int64(4_000_000), inc.MaxReward)
}

func TestComputeRewardIncrementNegativeAmount(t *testing.T) {
	svc := NewService(newFakeCodeRepo(), newFakeAccountRepo())

	_, err := svc.ComputeRewardIncrement("0xparent", -1, testCaps())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestApplyRewardIncrementRejectsDecrease(t *testing.T) {
	svc := NewService(newFakeCodeRepo(), newFakeAccountRepo())

	_, err := svc.ApplyRewardIncrement("0xparent", 100, 50)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestAccrueRewardWithoutCode(t *testing.T) {
	svc := NewService(newFakeCodeRepo(), newFakeAccountRepo())

	_, err := svc.AccrueReward("0xparent", 100_000, testCaps())
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestAccrueRewardStopsExactlyAtCap(t *testing.T) {
	codes := newFakeCodeRepo()
	svc := NewService(codes, newFakeAccountRepo())

	_, err := svc.IssueCode("0xparent")
	require.NoError(t, err)

	const workers = 40
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.AccrueReward("0xparent", 100_000, testCaps())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	row, err := codes.GetByAddress("0xparent")
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), row.TotalRewardAmount)
}

func TestCapsFromEnvDefaultsOnMalformed(t *testing.T) {
	t.Setenv("REWARD_CAP_BUYER", "not-a-number")
	t.Setenv("REWARD_CAP_NON_BUYER", "-5")

	caps := CapsFromEnv()
	assert.Equal(t, int64(4_000_000), caps.Buyer)
	assert.Equal(t, int64(2_000_000), caps.NonBuyer)
}

func TestCapsFromEnvReadsValues(t *testing.T) {
	t.Setenv("REWARD_CAP_BUYER", "500")
	t.Setenv("REWARD_CAP_NON_BUYER", "250")

	caps := CapsFromEnv()
	assert.Equal(t, int64(500), caps.Buyer)
	assert.Equal(t, int64(250), caps.NonBuyer)
}
