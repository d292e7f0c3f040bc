package service

import (
	"context"
	"iter"
	"slices"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/repository"
	"github.com/deeecaaa/cardmarket/pkg/eth"
)

const catalogPageSize = 100

// CatalogService is the read-side facade over the registry and the ledger.
// It resolves a viewer's full wallet set before querying cards, so identity
// never leaks into the ledger's own logic. It holds no state of its own.
type CatalogService struct {
	userRepo repository.UserRepository
	cardRepo repository.CardRepository
	pageSize int
}

func NewCatalogService(userRepo repository.UserRepository, cardRepo repository.CardRepository) *CatalogService {
	return &CatalogService{userRepo: userRepo, cardRepo: cardRepo, pageSize: catalogPageSize}
}

// Listed yields every listed card not owned by any wallet linked to viewer,
// in ascending id order. An empty viewer (unauthenticated) yields all listed
// cards. The sequence pages through the repository lazily and restarts from
// the beginning on every range, so a single mutation between pulls never
// shows a card twice.
func (s *CatalogService) Listed(ctx context.Context, viewer string) iter.Seq2[domain.Card, error] {
	return func(yield func(domain.Card, error) bool) {
		var exclude []string
		if viewer != "" {
			user, err := s.userRepo.GetByWallet(ctx, eth.Normalize(viewer))
			if err != nil {
				yield(domain.Card{}, err)
				return
			}
			if user != nil {
				exclude = user.Wallets
			}
		}

		after := int64(0)
		for {
			page, err := s.cardRepo.ListListed(ctx, after, s.pageSize)
			if err != nil {
				yield(domain.Card{}, err)
				return
			}
			for _, card := range page {
				after = card.ID
				if slices.Contains(exclude, card.Owner) {
					continue
				}
				if !yield(card, nil) {
					return
				}
			}
			if len(page) < s.pageSize {
				return
			}
		}
	}
}

// OwnedBy returns every card, listed or not, owned by any wallet linked to
// the user that owns the given wallet.
func (s *CatalogService) OwnedBy(ctx context.Context, wallet string) ([]domain.Card, error) {
	user, err := s.userRepo.GetByWallet(ctx, eth.Normalize(wallet))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.cardRepo.ListByOwners(ctx, user.Wallets)
}
