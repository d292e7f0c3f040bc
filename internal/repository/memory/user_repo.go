package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

type UserRepo struct {
	st *state
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, ok := r.st.usernames[key]; ok {
		return domain.ErrUsernameTaken
	}
	for _, w := range user.Wallets {
		if _, ok := r.st.walletOwner[w]; ok {
			return domain.ErrWalletTaken
		}
	}

	cp := cloneUser(user)
	r.st.users[cp.ID] = cp
	r.st.usernames[key] = cp.ID
	for _, w := range cp.Wallets {
		r.st.walletOwner[w] = cp.ID
	}
	return nil
}

func (r *UserRepo) GetByWallet(_ context.Context, wallet string) (*domain.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	id, ok := r.st.walletOwner[wallet]
	if !ok {
		return nil, nil
	}
	return cloneUser(r.st.users[id]), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	id, ok := r.st.usernames[strings.ToLower(username)]
	if !ok {
		return nil, nil
	}
	return cloneUser(r.st.users[id]), nil
}

func (r *UserRepo) AddWallet(_ context.Context, userID uuid.UUID, wallet string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.walletOwner[wallet]; ok {
		return domain.ErrWalletTaken
	}
	u, ok := r.st.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Wallets = append(u.Wallets, wallet)
	r.st.walletOwner[wallet] = userID
	return nil
}
