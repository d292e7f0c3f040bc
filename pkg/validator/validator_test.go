package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wallet   string
		fields   []string
	}{
		{"valid", "alice_1", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", nil},
		{"empty username", "", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", []string{"username"}},
		{"whitespace username", "   ", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", []string{"username"}},
		{"long username", strings.Repeat("a", 51), "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", []string{"username"}},
		{"bad characters", "alice!", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", []string{"username"}},
		{"short wallet", "alice", "0x123", []string{"wallet"}},
		{"missing prefix", "alice", strings.Repeat("a", 42), []string{"wallet"}},
		{"both invalid", "", "", []string{"username", "wallet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegister(tt.username, tt.wallet)
			assert.Equal(t, len(tt.fields) > 0, errs.HasErrors())
			for _, field := range tt.fields {
				assert.Contains(t, errs, field)
			}
		})
	}
}

func TestValidateCreateCard(t *testing.T) {
	assert.False(t, ValidateCreateCard("Dragon", 100).HasErrors())

	// Empty names are allowed.
	assert.False(t, ValidateCreateCard("", 100).HasErrors())

	errs := ValidateCreateCard(strings.Repeat("x", 101), 0)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
}

func TestValidateAddWallet(t *testing.T) {
	assert.False(t, ValidateAddWallet("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "0xsig").HasErrors())

	errs := ValidateAddWallet("bad", " ")
	assert.Contains(t, errs, "wallet")
	assert.Contains(t, errs, "signature")
}
