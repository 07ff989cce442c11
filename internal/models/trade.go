package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeTypeLong  = "LONG"
	TradeTypeShort = "SHORT"
)

// Trade is one journaled entry. Rows are created and deleted, never updated
// in place; created_at ordering defines the newest-first display order.
type Trade struct {
	ID         int64           `json:"trade_id"`
	Ticker     string          `json:"ticker"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Shares     int             `json:"shares"`
	TradeType  string          `json:"trade_type"` // "LONG" or "SHORT"
	Setup      string          `json:"setup"`
	UserID     *string         `json:"user_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AllocationSlice is one pie-chart slice: the summed entry_price*shares
// across all of a user's trades in a single ticker.
type AllocationSlice struct {
	Ticker string          `json:"ticker"`
	Value  decimal.Decimal `json:"value"`
}

type TradeStats struct {
	TotalTrades   int64           `json:"totalTrades"`
	LongCount     int64           `json:"longCount"`
	ShortCount    int64           `json:"shortCount"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	FirstTrade    *time.Time      `json:"firstTrade"`
	LastTrade     *time.Time      `json:"lastTrade"`
}
