package domain

import "errors"

// Sentinel errors shared by repositories and services. Handlers map these
// to HTTP status codes with errors.Is; repositories may wrap them with
// extra context.
var (
	// Validation
	ErrEmptyUsername   = errors.New("username must not be empty")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrInvalidAddress  = errors.New("malformed wallet address")

	// Conflict
	ErrUsernameTaken = errors.New("username already taken")
	ErrWalletTaken   = errors.New("wallet already registered")

	// Authentication
	ErrBadSignature = errors.New("signature does not match claimed address")

	// Authorization
	ErrNotOwner = errors.New("caller is not the card owner")
	ErrNotAdmin = errors.New("caller is not the marketplace administrator")

	// Not found
	ErrUserNotFound = errors.New("wallet is not registered")
	ErrCardNotFound = errors.New("card not found")

	// State
	ErrNotListed     = errors.New("card is not listed")
	ErrAlreadyListed = errors.New("card is already listed")

	// Payment
	ErrWrongFee     = errors.New("fee does not match the required amount")
	ErrWrongPayment = errors.New("payment does not match the card price")

	// Balances
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	ErrSelfTrade         = errors.New("cannot buy a card owned by one of your own wallets")
)
