package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

// UserRepository stores identities and the wallet→user binding.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	// Create persists a user together with its initial wallet as one atomic
	// step. Returns domain.ErrUsernameTaken or domain.ErrWalletTaken when a
	// uniqueness constraint loses the race.
	Create(ctx context.Context, user *domain.User) error
	GetByWallet(ctx context.Context, wallet string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// AddWallet binds one more wallet to an existing user. Returns
	// domain.ErrWalletTaken if the wallet is already bound to anyone.
	AddWallet(ctx context.Context, userID uuid.UUID, wallet string) error
}

// CardRepository owns card rows and applies every state transition as a
// single atomic mutation. Methods that act on behalf of a caller re-check
// ownership and listing state under the row lock, so two racing mutations
// of the same card cannot both succeed.
type CardRepository interface {
	// Create assigns the next sequential id, lists the card, and credits
	// the creation fee to the treasury in the same transaction.
	Create(ctx context.Context, card *domain.Card, fee int64) error
	GetByID(ctx context.Context, id int64) (*domain.Card, error)
	Total(ctx context.Context) (int64, error)
	// ListListed returns listed cards with id > afterID, ascending, at most
	// limit rows. Used to page the catalog.
	ListListed(ctx context.Context, afterID int64, limit int) ([]domain.Card, error)
	ListByOwners(ctx context.Context, owners []string) ([]domain.Card, error)
	UpdatePrice(ctx context.Context, id int64, caller string, price int64) (*domain.Card, error)
	List(ctx context.Context, id int64, caller string, price int64) (*domain.Card, error)
	// Delist flips the card to unlisted and credits the delisting fee to the
	// treasury in the same transaction.
	Delist(ctx context.Context, id int64, caller string, fee int64) (*domain.Card, error)
	// Purchase settles a sale: under the row lock it verifies the card is
	// listed, the payment equals the price, and the current owner is not in
	// blocked; then it credits the seller's proceeds and flips ownership.
	// A failure leaves the card untouched.
	Purchase(ctx context.Context, id int64, buyer string, payment int64, blocked []string) (*domain.Card, error)
}

// TreasuryRepository tracks protocol fees and per-wallet sale proceeds.
type TreasuryRepository interface {
	Fees(ctx context.Context) (int64, error)
	// WithdrawFees zeroes the fee balance and returns the amount withdrawn.
	// Returns domain.ErrNothingToWithdraw when the balance is zero.
	WithdrawFees(ctx context.Context) (int64, error)
	Proceeds(ctx context.Context, wallet string) (int64, error)
	WithdrawProceeds(ctx context.Context, wallet string) (int64, error)
}
