// Package protocol defines the JSON envelopes exchanged over the duplex
// connection. Every message carries a "type" field; inbound commands all
// unmarshal into Request and are dispatched by that field.
package protocol

import (
	"encoding/json"
	"strings"

	"lv-simtrade/internal/model"
	"lv-simtrade/internal/types"

	"github.com/shopspring/decimal"
)

// Client command types.
const (
	TypeRegister        = "register"
	TypeDeposit         = "deposit"
	TypeWithdrawRequest = "withdraw-request"
	TypeTrade           = "trade"
	TypeClosePosition   = "close-position"
)

// Admin command types.
const (
	TypeAdminAuth       = "admin-auth"
	TypeApproveWithdraw = "approve-withdraw"
	TypeRejectWithdraw  = "reject-withdraw"
	TypeUpdateBalance   = "update-balance"
)

// Server message types.
const (
	TypeUserData          = "user-data"
	TypeAdminData         = "admin-data"
	TypeAdminNotification = "admin-notification"
	TypeAuthSuccess       = "auth-success"
	TypeAuthError         = "auth-error"
	TypeWithdrawRequested = "withdraw-requested"
	TypePositionClosed    = "position-closed"
	TypeError             = "error"
)

// Amount carries a decimal that clients may send as a JSON number or a
// string. Parsing is deferred so that a bad value is a validation error on
// the command, not a parse failure on the envelope.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	*a = Amount(strings.TrimSpace(string(b)))
	return nil
}

// Decimal parses the raw value. Callers check sign and integrality.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(a))
}

// Request is the inbound envelope. Fields are a union over all commands;
// each handler reads the ones its command defines.
type Request struct {
	Type       string `json:"type"`
	UserID     string `json:"userId"`
	Amount     Amount `json:"amount"`
	Wallet     string `json:"wallet"`
	TradeType  string `json:"tradeType"`
	Leverage   Amount `json:"leverage"`
	EntryPrice Amount `json:"entryPrice"`
	PositionID string `json:"positionId"`
	RequestID  string `json:"requestId"`
	Password   string `json:"password"`
	Token      string `json:"token"`
}

type UserData struct {
	Type      string            `json:"type"`
	UserID    string            `json:"userId"`
	Balance   decimal.Decimal   `json:"balance"`
	Positions []*model.Position `json:"positions"`
}

func NewUserData(userID string, balance decimal.Decimal, positions []*model.Position) UserData {
	if positions == nil {
		positions = []*model.Position{}
	}
	return UserData{Type: TypeUserData, UserID: userID, Balance: balance, Positions: positions}
}

type AdminData struct {
	Type               string               `json:"type"`
	Users              []*model.Account     `json:"users"`
	Transactions       []*model.Transaction `json:"transactions"`
	PendingWithdrawals []*model.Transaction `json:"pendingWithdrawals"`
}

func NewAdminData(users []*model.Account, txs, pending []*model.Transaction) AdminData {
	if users == nil {
		users = []*model.Account{}
	}
	if txs == nil {
		txs = []*model.Transaction{}
	}
	if pending == nil {
		pending = []*model.Transaction{}
	}
	return AdminData{Type: TypeAdminData, Users: users, Transactions: txs, PendingWithdrawals: pending}
}

type AdminNotification struct {
	Type  string           `json:"type"`
	Event types.AdminEvent `json:"event"`
	Data  any              `json:"data"`
}

func NewAdminNotification(event types.AdminEvent, data any) AdminNotification {
	return AdminNotification{Type: TypeAdminNotification, Event: event, Data: data}
}

type AuthSuccess struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

func NewAuthSuccess(token string) AuthSuccess {
	return AuthSuccess{Type: TypeAuthSuccess, Token: token}
}

type AuthError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewAuthError(message string) AuthError {
	return AuthError{Type: TypeAuthError, Message: message}
}

type WithdrawRequested struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}

func NewWithdrawRequested(requestID string) WithdrawRequested {
	return WithdrawRequested{Type: TypeWithdrawRequested, RequestID: requestID}
}

type PositionClosed struct {
	Type       string          `json:"type"`
	UserID     string          `json:"userId"`
	PositionID string          `json:"positionId"`
	Profit     decimal.Decimal `json:"profit"`
	Balance    decimal.Decimal `json:"balance"`
}

func NewPositionClosed(userID, positionID string, profit, balance decimal.Decimal) PositionClosed {
	return PositionClosed{Type: TypePositionClosed, UserID: userID, PositionID: positionID, Profit: profit, Balance: balance}
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}
