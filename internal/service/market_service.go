package service

import (
	"context"
	"fmt"
	"time"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/repository"
	"github.com/deeecaaa/cardmarket/pkg/eth"
)

// MarketNotifier pushes card lifecycle events to connected clients. The
// WebSocket hub implements it; a nil notifier disables the feed.
type MarketNotifier interface {
	NotifyCardCreated(card *domain.Card)
	NotifyCardListed(card *domain.Card)
	NotifyCardDelisted(card *domain.Card)
	NotifyCardSold(card *domain.Card)
	NotifyPriceChanged(card *domain.Card)
}

// MarketConfig fixes the ledger's policy knobs.
type MarketConfig struct {
	// CreationFee and DelistingFee are the exact amounts, in the smallest
	// settlement unit, that must accompany create and delist calls.
	CreationFee  int64
	DelistingFee int64
	// AdminWallet is the only wallet allowed to withdraw protocol fees.
	AdminWallet string
	// AllowSelfTrade permits buying a card owned by another wallet linked to
	// the buyer's own account. Buying from the exact owning wallet is always
	// rejected.
	AllowSelfTrade bool
	// DefaultContentRef is used when a card is created without content.
	DefaultContentRef string
}

// MarketService owns card records and the fee account, and performs
// ownership transfer on purchase. Every caller wallet must resolve to a
// registered user.
type MarketService struct {
	cardRepo     repository.CardRepository
	treasuryRepo repository.TreasuryRepository
	userRepo     repository.UserRepository
	cfg          MarketConfig
	notifier     MarketNotifier
}

func NewMarketService(
	cardRepo repository.CardRepository,
	treasuryRepo repository.TreasuryRepository,
	userRepo repository.UserRepository,
	cfg MarketConfig,
	notifier MarketNotifier,
) *MarketService {
	cfg.AdminWallet = eth.Normalize(cfg.AdminWallet)
	return &MarketService{
		cardRepo:     cardRepo,
		treasuryRepo: treasuryRepo,
		userRepo:     userRepo,
		cfg:          cfg,
		notifier:     notifier,
	}
}

type CreateCardInput struct {
	Name       string `json:"name"`
	ContentRef string `json:"content_ref"`
	Price      int64  `json:"price"`
	FeePaid    int64  `json:"fee_paid"`
}

func (s *MarketService) CreateCard(ctx context.Context, caller string, input CreateCardInput) (*domain.Card, error) {
	caller, err := s.resolveCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if input.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if input.FeePaid != s.cfg.CreationFee {
		return nil, domain.ErrWrongFee
	}

	contentRef := input.ContentRef
	if contentRef == "" {
		contentRef = s.cfg.DefaultContentRef
	}

	card := &domain.Card{
		Name:       input.Name,
		ContentRef: contentRef,
		Price:      input.Price,
		Owner:      caller,
		IsListed:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.cardRepo.Create(ctx, card, input.FeePaid); err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyCardCreated(card)
	}
	return card, nil
}

func (s *MarketService) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	card, err := s.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, domain.ErrCardNotFound
	}
	return card, nil
}

func (s *MarketService) TotalCards(ctx context.Context) (int64, error) {
	return s.cardRepo.Total(ctx)
}

func (s *MarketService) UpdatePrice(ctx context.Context, id int64, caller string, price int64) (*domain.Card, error) {
	caller, err := s.resolveCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	card, err := s.cardRepo.UpdatePrice(ctx, id, caller, price)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyPriceChanged(card)
	}
	return card, nil
}

func (s *MarketService) ListCard(ctx context.Context, id int64, caller string, price int64) (*domain.Card, error) {
	caller, err := s.resolveCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	card, err := s.cardRepo.List(ctx, id, caller, price)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyCardListed(card)
	}
	return card, nil
}

func (s *MarketService) DelistCard(ctx context.Context, id int64, caller string, feePaid int64) (*domain.Card, error) {
	caller, err := s.resolveCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	if feePaid != s.cfg.DelistingFee {
		return nil, domain.ErrWrongFee
	}

	card, err := s.cardRepo.Delist(ctx, id, caller, feePaid)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyCardDelisted(card)
	}
	return card, nil
}

// Buy settles a purchase: the payment is credited to the seller's
// withdrawable proceeds and ownership flips, as one atomic step in the
// repository. The card comes back unlisted; the new owner re-lists
// explicitly.
func (s *MarketService) Buy(ctx context.Context, id int64, buyer string, payment int64) (*domain.Card, error) {
	user, err := s.userRepo.GetByWallet(ctx, eth.Normalize(buyer))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	buyer = eth.Normalize(buyer)

	blocked := []string{buyer}
	if !s.cfg.AllowSelfTrade {
		blocked = user.Wallets
	}

	card, err := s.cardRepo.Purchase(ctx, id, buyer, payment, blocked)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyCardSold(card)
	}
	return card, nil
}

// AdminWallet returns the protocol administrator address.
func (s *MarketService) AdminWallet() string {
	return s.cfg.AdminWallet
}

func (s *MarketService) Fees(ctx context.Context, caller string) (int64, error) {
	if eth.Normalize(caller) != s.cfg.AdminWallet {
		return 0, domain.ErrNotAdmin
	}
	return s.treasuryRepo.Fees(ctx)
}

func (s *MarketService) WithdrawFees(ctx context.Context, caller string) (int64, error) {
	if eth.Normalize(caller) != s.cfg.AdminWallet {
		return 0, domain.ErrNotAdmin
	}
	return s.treasuryRepo.WithdrawFees(ctx)
}

func (s *MarketService) Proceeds(ctx context.Context, wallet string) (int64, error) {
	return s.treasuryRepo.Proceeds(ctx, eth.Normalize(wallet))
}

func (s *MarketService) WithdrawProceeds(ctx context.Context, wallet string) (int64, error) {
	return s.treasuryRepo.WithdrawProceeds(ctx, eth.Normalize(wallet))
}

// resolveCaller rejects wallets that are not bound to a registered user and
// returns the normalized address.
func (s *MarketService) resolveCaller(ctx context.Context, wallet string) (string, error) {
	wallet = eth.Normalize(wallet)
	user, err := s.userRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}
	return wallet, nil
}
