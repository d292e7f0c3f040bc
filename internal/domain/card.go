package domain

import "time"

// Card is a marketplace item. IDs are assigned sequentially starting at 1
// and never reused. Price is denominated in the smallest indivisible unit
// of the settlement currency; money never touches floating point.
//
// ContentRef is an opaque content-addressed locator (an IPFS CID in the
// browser client). The ledger stores and returns it, nothing more.
type Card struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	ContentRef string    `json:"content_ref"`
	Price      int64     `json:"price"`
	Owner      string    `json:"owner"`
	IsListed   bool      `json:"is_listed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
