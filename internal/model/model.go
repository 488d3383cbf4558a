package model

import (
	"time"

	"lv-simtrade/internal/types"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        string          `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	Positions []*Position     `json:"positions"`
	CreatedAt time.Time       `json:"created_at"`
}

type Position struct {
	ID         string               `json:"positionId"`
	Direction  types.TradeDirection `json:"tradeType"`
	Amount     decimal.Decimal      `json:"amount"`
	Leverage   int64                `json:"leverage"`
	EntryPrice decimal.Decimal      `json:"entryPrice"`
	OpenedAt   time.Time            `json:"opened_at"`

	// autoClose is the pending settlement timer. Owned by the exchange
	// service; stopped on manual close.
	AutoClose *time.Timer `json:"-"`
}

type Transaction struct {
	ID        string                `json:"id"`
	Type      types.TransactionType `json:"type"`
	UserID    string                `json:"userId"`
	Amount    decimal.Decimal       `json:"amount"`
	Wallet    string                `json:"wallet,omitempty"`
	Status    types.WithdrawStatus  `json:"status,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}
