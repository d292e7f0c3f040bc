package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

type TreasuryRepo struct {
	pool *pgxpool.Pool
}

func NewTreasuryRepo(pool *pgxpool.Pool) *TreasuryRepo {
	return &TreasuryRepo{pool: pool}
}

func (r *TreasuryRepo) Fees(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT accumulated_fees FROM treasury WHERE id = 1`).Scan(&n)
	return n, err
}

func (r *TreasuryRepo) WithdrawFees(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`UPDATE treasury SET accumulated_fees = 0
		 WHERE id = 1 AND accumulated_fees > 0
		 RETURNING (SELECT accumulated_fees FROM treasury WHERE id = 1)`).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNothingToWithdraw
	}
	return n, err
}

func (r *TreasuryRepo) Proceeds(ctx context.Context, wallet string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE((SELECT balance FROM proceeds WHERE wallet = $1), 0)`, wallet).Scan(&n)
	return n, err
}

func (r *TreasuryRepo) WithdrawProceeds(ctx context.Context, wallet string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`UPDATE proceeds SET balance = 0
		 WHERE wallet = $1 AND balance > 0
		 RETURNING (SELECT balance FROM proceeds WHERE wallet = $1)`, wallet).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNothingToWithdraw
	}
	return n, err
}
