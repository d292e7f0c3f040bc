package service

import (
	"context"
	"sync"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/repository/memory"
	"github.com/deeecaaa/cardmarket/pkg/eth"
)

const (
	walletA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	walletB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	walletC = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func newRegistry(t *testing.T) *RegistryService {
	t.Helper()
	users, _, _ := memory.New()
	return NewRegistryService(users)
}

func genWallet(t *testing.T) (*secp256k1.PrivateKey, string) {
	t.Helper()
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return key, eth.PubkeyToAddress(key.PubKey())
}

func TestRegisterAndGetUser(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	user, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, []string{walletA}, user.Wallets)

	got, err := reg.GetUser(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	taken, err := reg.IsUsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	registered, err := reg.IsWalletRegistered(ctx, walletA)
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestRegisterValidation(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "", walletA)
	assert.ErrorIs(t, err, domain.ErrEmptyUsername)

	_, err = reg.Register(ctx, "   ", walletA)
	assert.ErrorIs(t, err, domain.ErrEmptyUsername)

	_, err = reg.Register(ctx, "alice", "not-an-address")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestRegisterUsernameCaseInsensitive(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "Alice", walletA)
	require.NoError(t, err)

	_, err = reg.Register(ctx, "alice", walletB)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = reg.Register(ctx, "ALICE", walletB)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegisterWalletConflictLeavesRegistryUnchanged(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)

	_, err = reg.Register(ctx, "bob", walletA)
	assert.ErrorIs(t, err, domain.ErrWalletTaken)

	// bob must not exist; alice must still own the wallet.
	taken, err := reg.IsUsernameTaken(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, taken)

	user, err := reg.GetUser(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRegisterNormalizesWalletCase(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "alice", "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)

	// Lookup with any casing resolves to the same user.
	user, err := reg.GetUser(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, []string{walletA}, user.Wallets)

	_, err = reg.Register(ctx, "bob", walletA)
	assert.ErrorIs(t, err, domain.ErrWalletTaken)
}

func TestConcurrentRegistrationSameUsername(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	wallets := []string{walletA, walletB, walletC}
	errs := make([]error, len(wallets))

	var wg sync.WaitGroup
	for i, w := range wallets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = reg.Register(ctx, "highlander", w)
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrUsernameTaken)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestAddWallet(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)

	key, addr := genWallet(t)
	sig := eth.SignPersonal(OwnershipChallenge(addr), key)

	user, err := reg.AddWallet(ctx, walletA, addr, sig)
	require.NoError(t, err)
	assert.Equal(t, []string{walletA, addr}, user.Wallets)

	// The new wallet now resolves to the same user.
	got, err := reg.GetUser(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAddWalletRejectsWrongSigner(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)

	key, _ := genWallet(t)
	_, claimed := genWallet(t)

	// Signature produced by a different key than the one controlling the
	// claimed address.
	sig := eth.SignPersonal(OwnershipChallenge(claimed), key)

	_, err = reg.AddWallet(ctx, walletA, claimed, sig)
	assert.ErrorIs(t, err, domain.ErrBadSignature)

	user, err := reg.GetUser(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, []string{walletA}, user.Wallets)
}

func TestAddWalletRejectsReplayForDifferentAddress(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)

	key, addr := genWallet(t)
	_, other := genWallet(t)

	// A valid proof for addr must not bind other: the challenge embeds the
	// claimed address, so the recovered signer no longer matches.
	sig := eth.SignPersonal(OwnershipChallenge(addr), key)

	_, err = reg.AddWallet(ctx, walletA, other, sig)
	assert.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestAddWalletAlreadyBound(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)

	key, addr := genWallet(t)
	sig := eth.SignPersonal(OwnershipChallenge(addr), key)

	_, err = reg.AddWallet(ctx, walletA, addr, sig)
	require.NoError(t, err)

	// Binding the same wallet again fails, even for the same user.
	_, err = reg.AddWallet(ctx, walletA, addr, sig)
	assert.ErrorIs(t, err, domain.ErrWalletTaken)

	// And another user cannot claim it either.
	_, err = reg.Register(ctx, "bob", walletB)
	require.NoError(t, err)
	_, err = reg.AddWallet(ctx, walletB, addr, sig)
	assert.ErrorIs(t, err, domain.ErrWalletTaken)
}

func TestConcurrentAddWalletSameAddress(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "alice", walletA)
	require.NoError(t, err)
	_, err = reg.Register(ctx, "bob", walletB)
	require.NoError(t, err)

	key, addr := genWallet(t)
	sig := eth.SignPersonal(OwnershipChallenge(addr), key)

	callers := []string{walletA, walletB}
	errs := make([]error, len(callers))

	var wg sync.WaitGroup
	for i, caller := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = reg.AddWallet(ctx, caller, addr, sig)
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrWalletTaken)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestGetUserUnknownWallet(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.GetUser(context.Background(), walletC)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
