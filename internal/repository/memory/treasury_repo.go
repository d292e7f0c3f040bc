package memory

import (
	"context"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

type TreasuryRepo struct {
	st *state
}

func (r *TreasuryRepo) Fees(_ context.Context) (int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.st.fees, nil
}

func (r *TreasuryRepo) WithdrawFees(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.st.fees == 0 {
		return 0, domain.ErrNothingToWithdraw
	}
	n := r.st.fees
	r.st.fees = 0
	return n, nil
}

func (r *TreasuryRepo) Proceeds(_ context.Context, wallet string) (int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.st.proceeds[wallet], nil
}

func (r *TreasuryRepo) WithdrawProceeds(_ context.Context, wallet string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	n := r.st.proceeds[wallet]
	if n == 0 {
		return 0, domain.ErrNothingToWithdraw
	}
	delete(r.st.proceeds, wallet)
	return n, nil
}
