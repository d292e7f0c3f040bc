package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/repository"
	"github.com/deeecaaa/cardmarket/pkg/eth"
)

// RegistryService owns user records: username uniqueness, the wallet→user
// binding, and the proof-of-ownership protocol for linking extra wallets.
type RegistryService struct {
	userRepo repository.UserRepository
}

func NewRegistryService(userRepo repository.UserRepository) *RegistryService {
	return &RegistryService{userRepo: userRepo}
}

// OwnershipChallenge is the canonical message a wallet must sign to prove it
// is controlled by the caller. Binding the claimed address into the message
// prevents replaying a signature against a different address.
func OwnershipChallenge(wallet string) string {
	return fmt.Sprintf("I confirm ownership of the address: %s", wallet)
}

func (s *RegistryService) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

func (s *RegistryService) IsWalletRegistered(ctx context.Context, wallet string) (bool, error) {
	if !eth.IsAddress(wallet) {
		return false, nil
	}
	u, err := s.userRepo.GetByWallet(ctx, eth.Normalize(wallet))
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// Register creates a user bound to its first wallet. The uniqueness
// pre-checks give friendly errors; the repository's constraints settle races.
func (s *RegistryService) Register(ctx context.Context, username, wallet string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrEmptyUsername
	}
	if !eth.IsAddress(wallet) {
		return nil, domain.ErrInvalidAddress
	}
	wallet = eth.Normalize(wallet)

	taken, err := s.IsUsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	existing, err := s.userRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrWalletTaken
	}

	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		Wallets:   []string{wallet},
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *RegistryService) GetUser(ctx context.Context, wallet string) (*domain.User, error) {
	user, err := s.userRepo.GetByWallet(ctx, eth.Normalize(wallet))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// AddWallet links newWallet to the user owning callerWallet, after verifying
// a personal_sign signature over the ownership challenge produced by the key
// controlling newWallet.
func (s *RegistryService) AddWallet(ctx context.Context, callerWallet, newWallet, signature string) (*domain.User, error) {
	user, err := s.GetUser(ctx, callerWallet)
	if err != nil {
		return nil, err
	}

	if !eth.IsAddress(newWallet) {
		return nil, domain.ErrInvalidAddress
	}

	recovered, err := eth.RecoverAddress(OwnershipChallenge(newWallet), signature)
	if err != nil || !strings.EqualFold(recovered, newWallet) {
		return nil, domain.ErrBadSignature
	}

	if err := s.userRepo.AddWallet(ctx, user.ID, eth.Normalize(newWallet)); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, callerWallet)
}
