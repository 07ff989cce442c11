package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphatracker/backend/internal/models"
)

const tradeColumns = `trade_id, ticker, entry_price, shares, trade_type, setup, user_id, created_at`

type TradeRepo struct {
	pool *pgxpool.Pool
}

func NewTradeRepo(pool *pgxpool.Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

// Create inserts one row and returns it fully materialized, including the
// generated trade_id and created_at.
func (r *TradeRepo) Create(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO trades (ticker, entry_price, shares, trade_type, setup, user_id)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING `+tradeColumns,
		t.Ticker, t.EntryPrice, t.Shares, t.TradeType, t.Setup, t.UserID,
	)
	return scanTrade(row)
}

// ListByUser returns all of a user's trades ordered by created_at descending.
func (r *TradeRepo) ListByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

// Delete removes the row with the given id. When userID is non-empty the
// delete is restricted to rows owned by that user. The returned count is the
// number of rows removed; zero is not an error (delete is idempotent).
func (r *TradeRepo) Delete(ctx context.Context, id int64, userID string) (int64, error) {
	if userID == "" {
		tag, err := r.pool.Exec(ctx, `DELETE FROM trades WHERE trade_id = $1`, id)
		return tag.RowsAffected(), err
	}
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM trades WHERE trade_id = $1 AND user_id = $2`, id, userID)
	return tag.RowsAffected(), err
}

// Allocation groups a user's trades by ticker, summing entry_price*shares per
// ticker. This is the server-side counterpart of the client's pie chart.
func (r *TradeRepo) Allocation(ctx context.Context, userID string) ([]models.AllocationSlice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ticker, SUM(entry_price * shares)
		 FROM trades WHERE user_id = $1
		 GROUP BY ticker
		 ORDER BY 2 DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AllocationSlice
	for rows.Next() {
		var s models.AllocationSlice
		if err := rows.Scan(&s.Ticker, &s.Value); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Stats returns aggregate journal statistics for a user.
func (r *TradeRepo) Stats(ctx context.Context, userID string) (*models.TradeStats, error) {
	var s models.TradeStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE trade_type = 'LONG'),
			COUNT(*) FILTER (WHERE trade_type = 'SHORT'),
			COALESCE(SUM(entry_price * shares), 0),
			MIN(created_at),
			MAX(created_at)
		 FROM trades WHERE user_id = $1`,
		userID,
	).Scan(
		&s.TotalTrades, &s.LongCount, &s.ShortCount,
		&s.TotalInvested, &s.FirstTrade, &s.LastTrade,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID fetches a single trade, nil when the row does not exist.
func (r *TradeRepo) GetByID(ctx context.Context, id int64) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE trade_id = $1`, id)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanTrade(row scannable) (*models.Trade, error) {
	var t models.Trade
	err := row.Scan(
		&t.ID, &t.Ticker, &t.EntryPrice, &t.Shares,
		&t.TradeType, &t.Setup, &t.UserID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectTrades(rows rowsIter) ([]models.Trade, error) {
	var out []models.Trade
	for rows.Next() {
		var t models.Trade
		if err := rows.Scan(
			&t.ID, &t.Ticker, &t.EntryPrice, &t.Shares,
			&t.TradeType, &t.Setup, &t.UserID, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
