package postgres

import (
	"context"
	"errors"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

const cardColumns = `id, name, content_ref, price, owner, is_listed, created_at, updated_at`

type CardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

func (r *CardRepo) Create(ctx context.Context, card *domain.Card, fee int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO cards (name, content_ref, price, owner, is_listed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id`,
		card.Name, card.ContentRef, card.Price, card.Owner, card.IsListed, card.CreatedAt,
	).Scan(&card.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE treasury SET accumulated_fees = accumulated_fees + $1 WHERE id = 1`, fee); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *CardRepo) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	var c domain.Card
	err := r.pool.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.ContentRef, &c.Price, &c.Owner, &c.IsListed, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CardRepo) Total(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM cards`).Scan(&n)
	return n, err
}

func (r *CardRepo) ListListed(ctx context.Context, afterID int64, limit int) ([]domain.Card, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cardColumns+` FROM cards
		 WHERE is_listed AND id > $1
		 ORDER BY id
		 LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, err
	}
	return collectCards(rows)
}

func (r *CardRepo) ListByOwners(ctx context.Context, owners []string) ([]domain.Card, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE owner = ANY($1) ORDER BY id`, owners)
	if err != nil {
		return nil, err
	}
	return collectCards(rows)
}

func (r *CardRepo) UpdatePrice(ctx context.Context, id int64, caller string, price int64) (*domain.Card, error) {
	return r.mutate(ctx, id, func(c *domain.Card) error {
		if c.Owner != caller {
			return domain.ErrNotOwner
		}
		c.Price = price
		return nil
	})
}

func (r *CardRepo) List(ctx context.Context, id int64, caller string, price int64) (*domain.Card, error) {
	return r.mutate(ctx, id, func(c *domain.Card) error {
		if c.Owner != caller {
			return domain.ErrNotOwner
		}
		c.IsListed = true
		c.Price = price
		return nil
	})
}

func (r *CardRepo) Delist(ctx context.Context, id int64, caller string, fee int64) (*domain.Card, error) {
	return r.mutateWithTreasury(ctx, id, fee, func(c *domain.Card) error {
		if c.Owner != caller {
			return domain.ErrNotOwner
		}
		if !c.IsListed {
			return domain.ErrNotListed
		}
		c.IsListed = false
		return nil
	})
}

func (r *CardRepo) Purchase(ctx context.Context, id int64, buyer string, payment int64, blocked []string) (*domain.Card, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	card, err := lockCard(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !card.IsListed {
		return nil, domain.ErrNotListed
	}
	if payment != card.Price {
		return nil, domain.ErrWrongPayment
	}
	if slices.Contains(blocked, card.Owner) {
		return nil, domain.ErrSelfTrade
	}

	seller := card.Owner
	card.Owner = buyer
	card.IsListed = false

	if _, err := tx.Exec(ctx,
		`UPDATE cards SET owner = $1, is_listed = false, updated_at = now() WHERE id = $2`,
		buyer, id); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO proceeds (wallet, balance) VALUES ($1, $2)
		 ON CONFLICT (wallet) DO UPDATE SET balance = proceeds.balance + $2`,
		seller, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return card, nil
}

// mutate applies fn to the card under a row lock and writes back price and
// listing state. fn returning an error aborts the transaction untouched.
func (r *CardRepo) mutate(ctx context.Context, id int64, fn func(*domain.Card) error) (*domain.Card, error) {
	return r.mutateWithTreasury(ctx, id, 0, fn)
}

func (r *CardRepo) mutateWithTreasury(ctx context.Context, id int64, fee int64, fn func(*domain.Card) error) (*domain.Card, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	card, err := lockCard(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(card); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE cards SET price = $1, is_listed = $2, updated_at = now() WHERE id = $3`,
		card.Price, card.IsListed, id); err != nil {
		return nil, err
	}

	if fee > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE treasury SET accumulated_fees = accumulated_fees + $1 WHERE id = 1`, fee); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return card, nil
}

func lockCard(ctx context.Context, tx pgx.Tx, id int64) (*domain.Card, error) {
	var c domain.Card
	err := tx.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id).Scan(
		&c.ID, &c.Name, &c.ContentRef, &c.Price, &c.Owner, &c.IsListed, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCards(rows pgx.Rows) ([]domain.Card, error) {
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.ContentRef, &c.Price, &c.Owner, &c.IsListed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
