package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, created_at) VALUES ($1, $2, $3)`,
		user.ID, user.Username, user.CreatedAt,
	)
	if err != nil {
		return translateUnique(err)
	}

	for i, wallet := range user.Wallets {
		_, err = tx.Exec(ctx,
			`INSERT INTO wallets (address, user_id, position) VALUES ($1, $2, $3)`,
			wallet, user.ID, i,
		)
		if err != nil {
			return translateUnique(err)
		}
	}

	return tx.Commit(ctx)
}

func (r *UserRepo) GetByWallet(ctx context.Context, wallet string) (*domain.User, error) {
	return r.scanUser(ctx,
		`SELECT u.id, u.username, u.created_at FROM users u
		 JOIN wallets w ON w.user_id = u.id
		 WHERE w.address = $1`, wallet)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx,
		`SELECT id, username, created_at FROM users WHERE LOWER(username) = LOWER($1)`, username)
}

func (r *UserRepo) AddWallet(ctx context.Context, userID uuid.UUID, wallet string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wallets (address, user_id, position)
		 VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM wallets WHERE user_id = $2))`,
		wallet, userID,
	)
	return translateUnique(err)
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT address FROM wallets WHERE user_id = $1 ORDER BY position`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		u.Wallets = append(u.Wallets, addr)
	}
	return &u, rows.Err()
}

// translateUnique maps unique-constraint violations onto the domain's
// conflict errors so racing registrations fail the same way pre-checks do.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "wallets_pkey" {
			return domain.ErrWalletTaken
		}
		return domain.ErrUsernameTaken
	}
	return err
}
