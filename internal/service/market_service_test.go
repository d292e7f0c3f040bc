package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/repository/memory"
	"github.com/deeecaaa/cardmarket/pkg/eth"
)

const (
	adminWallet = "0xffffffffffffffffffffffffffffffffffffffff"

	creationFee  = int64(3)
	delistingFee = int64(3)
)

type marketFixture struct {
	registry *RegistryService
	market   *MarketService
	treasury *memory.TreasuryRepo
}

func newMarket(t *testing.T, allowSelfTrade bool) *marketFixture {
	t.Helper()
	users, cards, treasury := memory.New()

	reg := NewRegistryService(users)
	market := NewMarketService(cards, treasury, users, MarketConfig{
		CreationFee:       creationFee,
		DelistingFee:      delistingFee,
		AdminWallet:       adminWallet,
		AllowSelfTrade:    allowSelfTrade,
		DefaultContentRef: "QmDefault",
	}, nil)

	ctx := context.Background()
	_, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)
	_, err = reg.Register(ctx, "bob", walletB)
	require.NoError(t, err)

	return &marketFixture{registry: reg, market: market, treasury: treasury}
}

func (f *marketFixture) mustCreate(t *testing.T, owner, name string, price int64) *domain.Card {
	t.Helper()
	card, err := f.market.CreateCard(context.Background(), owner, CreateCardInput{
		Name:    name,
		Price:   price,
		FeePaid: creationFee,
	})
	require.NoError(t, err)
	return card
}

func TestCreateCardRoundTrip(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	card := f.mustCreate(t, walletA, "Dragon", 100)
	assert.Equal(t, int64(1), card.ID)

	got, err := f.market.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dragon", got.Name)
	assert.Equal(t, int64(100), got.Price)
	assert.Equal(t, walletA, got.Owner)
	assert.True(t, got.IsListed)
	assert.Equal(t, "QmDefault", got.ContentRef)

	fees, err := f.market.Fees(ctx, adminWallet)
	require.NoError(t, err)
	assert.Equal(t, creationFee, fees)

	total, err := f.market.TotalCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestCreateCardSequentialIDs(t *testing.T) {
	f := newMarket(t, false)

	first := f.mustCreate(t, walletA, "one", 10)
	second := f.mustCreate(t, walletB, "two", 20)
	third := f.mustCreate(t, walletA, "three", 30)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(3), third.ID)
}

func TestCreateCardRejections(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	_, err := f.market.CreateCard(ctx, walletA, CreateCardInput{Name: "x", Price: 0, FeePaid: creationFee})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = f.market.CreateCard(ctx, walletA, CreateCardInput{Name: "x", Price: -5, FeePaid: creationFee})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = f.market.CreateCard(ctx, walletA, CreateCardInput{Name: "x", Price: 10, FeePaid: creationFee + 1})
	assert.ErrorIs(t, err, domain.ErrWrongFee)

	// Unregistered wallets cannot create cards.
	_, err = f.market.CreateCard(ctx, walletC, CreateCardInput{Name: "x", Price: 10, FeePaid: creationFee})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	total, err := f.market.TotalCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGetCardNotFound(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	_, err := f.market.GetCard(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	f.mustCreate(t, walletA, "only", 10)
	_, err = f.market.GetCard(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestUpdatePriceAuthorization(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	card := f.mustCreate(t, walletA, "card", 50)

	_, err := f.market.UpdatePrice(ctx, card.ID, walletB, 10)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	got, err := f.market.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Price)

	updated, err := f.market.UpdatePrice(ctx, card.ID, walletA, 75)
	require.NoError(t, err)
	assert.Equal(t, int64(75), updated.Price)

	_, err = f.market.UpdatePrice(ctx, card.ID, walletA, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestDelistAndRelist(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	card := f.mustCreate(t, walletA, "card", 50)

	_, err := f.market.DelistCard(ctx, card.ID, walletA, delistingFee+1)
	assert.ErrorIs(t, err, domain.ErrWrongFee)

	_, err = f.market.DelistCard(ctx, card.ID, walletB, delistingFee)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	delisted, err := f.market.DelistCard(ctx, card.ID, walletA, delistingFee)
	require.NoError(t, err)
	assert.False(t, delisted.IsListed)

	// Delist fee joined the creation fee in the treasury.
	fees, err := f.market.Fees(ctx, adminWallet)
	require.NoError(t, err)
	assert.Equal(t, creationFee+delistingFee, fees)

	// A second delist is a state error.
	_, err = f.market.DelistCard(ctx, card.ID, walletA, delistingFee)
	assert.ErrorIs(t, err, domain.ErrNotListed)

	_, err = f.market.ListCard(ctx, card.ID, walletA, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	relisted, err := f.market.ListCard(ctx, card.ID, walletA, 80)
	require.NoError(t, err)
	assert.True(t, relisted.IsListed)
	assert.Equal(t, int64(80), relisted.Price)
}

func TestBuyTransfersOwnershipAndProceeds(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	card := f.mustCreate(t, walletA, "card", 100)

	bought, err := f.market.Buy(ctx, card.ID, walletB, 100)
	require.NoError(t, err)
	assert.Equal(t, walletB, bought.Owner)
	assert.False(t, bought.IsListed)

	// Payment landed in the seller's withdrawable proceeds, not the fee pot.
	proceeds, err := f.market.Proceeds(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, int64(100), proceeds)

	fees, err := f.market.Fees(ctx, adminWallet)
	require.NoError(t, err)
	assert.Equal(t, creationFee, fees)

	// The new owner must explicitly re-list before anyone can buy again.
	_, err = f.market.Buy(ctx, card.ID, walletA, 100)
	assert.ErrorIs(t, err, domain.ErrNotListed)
}

func TestBuyRejections(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	card := f.mustCreate(t, walletA, "card", 100)

	_, err := f.market.Buy(ctx, 99, walletB, 100)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	_, err = f.market.Buy(ctx, card.ID, walletB, 99)
	assert.ErrorIs(t, err, domain.ErrWrongPayment)

	_, err = f.market.Buy(ctx, card.ID, walletC, 100)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// Nothing changed.
	got, err := f.market.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, walletA, got.Owner)
	assert.True(t, got.IsListed)
}

func TestBuySelfTradeBlockedAcrossLinkedWallets(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	// Link a second wallet to alice.
	key, addr := genWallet(t)
	sig := eth.SignPersonal(OwnershipChallenge(addr), key)
	_, err := f.registry.AddWallet(ctx, walletA, addr, sig)
	require.NoError(t, err)

	card := f.mustCreate(t, walletA, "card", 100)

	// Same wallet.
	_, err = f.market.Buy(ctx, card.ID, walletA, 100)
	assert.ErrorIs(t, err, domain.ErrSelfTrade)

	// Second linked wallet.
	_, err = f.market.Buy(ctx, card.ID, addr, 100)
	assert.ErrorIs(t, err, domain.ErrSelfTrade)
}

func TestBuySelfTradePolicyFlag(t *testing.T) {
	f := newMarket(t, true)
	ctx := context.Background()

	key, addr := genWallet(t)
	sig := eth.SignPersonal(OwnershipChallenge(addr), key)
	_, err := f.registry.AddWallet(ctx, walletA, addr, sig)
	require.NoError(t, err)

	card := f.mustCreate(t, walletA, "card", 100)

	// Buying from the exact owning wallet stays forbidden.
	_, err = f.market.Buy(ctx, card.ID, walletA, 100)
	assert.ErrorIs(t, err, domain.ErrSelfTrade)

	// A second linked wallet may buy when the policy allows it.
	bought, err := f.market.Buy(ctx, card.ID, addr, 100)
	require.NoError(t, err)
	assert.Equal(t, addr, bought.Owner)
}

func TestConcurrentBuyExactlyOneSucceeds(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	_, err := f.registry.Register(ctx, "carol", walletC)
	require.NoError(t, err)

	card := f.mustCreate(t, walletA, "card", 100)

	buyers := []string{walletB, walletC}
	errs := make([]error, len(buyers))

	var wg sync.WaitGroup
	for i, buyer := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.market.Buy(ctx, card.ID, buyer, 100)
		}()
	}
	wg.Wait()

	var winner string
	var succeeded int
	for i, err := range errs {
		if err == nil {
			succeeded++
			winner = buyers[i]
		} else {
			assert.ErrorIs(t, err, domain.ErrNotListed)
		}
	}
	require.Equal(t, 1, succeeded)

	got, err := f.market.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, got.Owner)
	assert.False(t, got.IsListed)

	// The seller was paid exactly once.
	proceeds, err := f.market.Proceeds(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, int64(100), proceeds)
}

func TestListedImpliesPositivePrice(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	card := f.mustCreate(t, walletA, "card", 100)

	checkInvariant := func() {
		t.Helper()
		got, err := f.market.GetCard(ctx, card.ID)
		require.NoError(t, err)
		if got.IsListed {
			assert.Positive(t, got.Price)
		}
	}

	checkInvariant()

	_, err := f.market.UpdatePrice(ctx, card.ID, walletA, 5)
	require.NoError(t, err)
	checkInvariant()

	_, err = f.market.DelistCard(ctx, card.ID, walletA, delistingFee)
	require.NoError(t, err)
	checkInvariant()

	_, err = f.market.ListCard(ctx, card.ID, walletA, 7)
	require.NoError(t, err)
	checkInvariant()

	_, err = f.market.Buy(ctx, card.ID, walletB, 7)
	require.NoError(t, err)
	checkInvariant()
}

func TestWithdrawFees(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	// Empty treasury.
	_, err := f.market.WithdrawFees(ctx, adminWallet)
	assert.ErrorIs(t, err, domain.ErrNothingToWithdraw)

	fees, err := f.market.Fees(ctx, adminWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fees)

	f.mustCreate(t, walletA, "card", 100)

	// Non-admin callers are rejected.
	_, err = f.market.WithdrawFees(ctx, walletA)
	assert.ErrorIs(t, err, domain.ErrNotAdmin)
	_, err = f.market.Fees(ctx, walletA)
	assert.ErrorIs(t, err, domain.ErrNotAdmin)

	amount, err := f.market.WithdrawFees(ctx, adminWallet)
	require.NoError(t, err)
	assert.Equal(t, creationFee, amount)

	fees, err = f.market.Fees(ctx, adminWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fees)
}

func TestWithdrawProceeds(t *testing.T) {
	f := newMarket(t, false)
	ctx := context.Background()

	card := f.mustCreate(t, walletA, "card", 100)
	_, err := f.market.Buy(ctx, card.ID, walletB, 100)
	require.NoError(t, err)

	amount, err := f.market.WithdrawProceeds(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount)

	_, err = f.market.WithdrawProceeds(ctx, walletA)
	assert.ErrorIs(t, err, domain.ErrNothingToWithdraw)
}

func TestAdminWalletNormalized(t *testing.T) {
	users, cards, treasury := memory.New()
	market := NewMarketService(cards, treasury, users, MarketConfig{
		AdminWallet: "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF",
	}, nil)

	assert.Equal(t, adminWallet, market.AdminWallet())

	// Mixed-case admin caller is accepted.
	_, err := market.Fees(context.Background(), "0xFFffffffffffffffffffffffffffffffffffffFF")
	assert.NoError(t, err)
}
