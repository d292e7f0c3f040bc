// Package memory holds an in-process implementation of the repository
// interfaces. It backs the service tests and doubles as a dev-mode store;
// a single RWMutex makes every mutation one atomic step.
package memory

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

// state is the shared backing store. The three repositories are views over
// it so that cross-entity mutations (create card + credit fee, purchase +
// credit proceeds) commit under one lock.
type state struct {
	mu sync.RWMutex

	users       map[uuid.UUID]*domain.User
	walletOwner map[string]uuid.UUID // wallet → user id
	usernames   map[string]uuid.UUID // lower(username) → user id

	cards    []*domain.Card // index i holds card id i+1
	fees     int64
	proceeds map[string]int64
}

// New returns the three repositories backed by one fresh store.
func New() (*UserRepo, *CardRepo, *TreasuryRepo) {
	st := &state{
		users:       make(map[uuid.UUID]*domain.User),
		walletOwner: make(map[string]uuid.UUID),
		usernames:   make(map[string]uuid.UUID),
		proceeds:    make(map[string]int64),
	}
	return &UserRepo{st: st}, &CardRepo{st: st}, &TreasuryRepo{st: st}
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	cp.Wallets = slices.Clone(u.Wallets)
	return &cp
}

func cloneCard(c *domain.Card) *domain.Card {
	cp := *c
	return &cp
}
