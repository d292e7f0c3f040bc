package memory

import (
	"context"
	"slices"
	"time"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

type CardRepo struct {
	st *state
}

func (r *CardRepo) Create(_ context.Context, card *domain.Card, fee int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	cp := cloneCard(card)
	cp.ID = int64(len(r.st.cards)) + 1
	r.st.cards = append(r.st.cards, cp)
	r.st.fees += fee

	card.ID = cp.ID
	return nil
}

func (r *CardRepo) GetByID(_ context.Context, id int64) (*domain.Card, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	c := r.st.card(id)
	if c == nil {
		return nil, nil
	}
	return cloneCard(c), nil
}

func (r *CardRepo) Total(_ context.Context) (int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return int64(len(r.st.cards)), nil
}

func (r *CardRepo) ListListed(_ context.Context, afterID int64, limit int) ([]domain.Card, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []domain.Card
	for _, c := range r.st.cards {
		if c.ID <= afterID || !c.IsListed {
			continue
		}
		out = append(out, *cloneCard(c))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *CardRepo) ListByOwners(_ context.Context, owners []string) ([]domain.Card, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var out []domain.Card
	for _, c := range r.st.cards {
		if slices.Contains(owners, c.Owner) {
			out = append(out, *cloneCard(c))
		}
	}
	return out, nil
}

func (r *CardRepo) UpdatePrice(_ context.Context, id int64, caller string, price int64) (*domain.Card, error) {
	return r.mutate(id, 0, func(c *domain.Card) error {
		if c.Owner != caller {
			return domain.ErrNotOwner
		}
		c.Price = price
		return nil
	})
}

func (r *CardRepo) List(_ context.Context, id int64, caller string, price int64) (*domain.Card, error) {
	return r.mutate(id, 0, func(c *domain.Card) error {
		if c.Owner != caller {
			return domain.ErrNotOwner
		}
		c.IsListed = true
		c.Price = price
		return nil
	})
}

func (r *CardRepo) Delist(_ context.Context, id int64, caller string, fee int64) (*domain.Card, error) {
	return r.mutate(id, fee, func(c *domain.Card) error {
		if c.Owner != caller {
			return domain.ErrNotOwner
		}
		if !c.IsListed {
			return domain.ErrNotListed
		}
		c.IsListed = false
		return nil
	})
}

func (r *CardRepo) Purchase(_ context.Context, id int64, buyer string, payment int64, blocked []string) (*domain.Card, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	c := r.st.card(id)
	if c == nil {
		return nil, domain.ErrCardNotFound
	}
	if !c.IsListed {
		return nil, domain.ErrNotListed
	}
	if payment != c.Price {
		return nil, domain.ErrWrongPayment
	}
	if slices.Contains(blocked, c.Owner) {
		return nil, domain.ErrSelfTrade
	}

	r.st.proceeds[c.Owner] += payment
	c.Owner = buyer
	c.IsListed = false
	c.UpdatedAt = time.Now()
	return cloneCard(c), nil
}

// mutate applies fn under the write lock; an error from fn leaves the card
// and the fee balance unchanged.
func (r *CardRepo) mutate(id int64, fee int64, fn func(*domain.Card) error) (*domain.Card, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	c := r.st.card(id)
	if c == nil {
		return nil, domain.ErrCardNotFound
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	r.st.fees += fee
	return cloneCard(c), nil
}

// card returns the live record for id, or nil. Callers hold st.mu.
func (s *state) card(id int64) *domain.Card {
	if id < 1 || id > int64(len(s.cards)) {
		return nil
	}
	return s.cards[id-1]
}
