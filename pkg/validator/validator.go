package validator

import (
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func ValidateRegister(username, wallet string) ValidationErrors {
	errs := make(ValidationErrors)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}

	validateWallet(wallet, errs)

	return errs
}

func ValidateCreateCard(name string, price int64) ValidationErrors {
	errs := make(ValidationErrors)

	// An empty name renders as "Unnamed Card" client-side; only length is
	// checked here.
	if len(strings.TrimSpace(name)) > 100 {
		errs.Add("name", "Card name is too long")
	}

	if price <= 0 {
		errs.Add("price", "Price must be greater than zero")
	}

	return errs
}

func ValidateAddWallet(wallet, signature string) ValidationErrors {
	errs := make(ValidationErrors)

	validateWallet(wallet, errs)

	if strings.TrimSpace(signature) == "" {
		errs.Add("signature", "Signature is required")
	}

	return errs
}

func validateWallet(wallet string, errs ValidationErrors) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		errs.Add("wallet", "Wallet address is required")
	} else if !addressRegex.MatchString(wallet) {
		errs.Add("wallet", "Wallet must be a 0x-prefixed 40-digit hex address")
	}
}
