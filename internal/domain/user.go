package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity in the registry. A user controls one or more wallet
// addresses; every address belongs to at most one user. Wallets keeps
// insertion order for display.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Wallets   []string  `json:"wallets"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnsWallet reports whether addr (already normalized) is linked to this user.
func (u *User) OwnsWallet(addr string) bool {
	for _, w := range u.Wallets {
		if w == addr {
			return true
		}
	}
	return false
}
