package exchange

import (
	"time"

	"lv-simtrade/internal/model"
	"lv-simtrade/internal/protocol"
	"lv-simtrade/internal/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// OpenPosition reserves the margin up front: the stake is debited
// immediately and only comes back through settlement. An auto-close timer
// is armed for the configured TTL.
func (s *Service) OpenPosition(userID string, direction types.TradeDirection, amount decimal.Decimal, leverage int64, entryPrice decimal.Decimal) (protocol.UserData, error) {
	if !amount.IsPositive() {
		return protocol.UserData{}, ErrInvalidAmount
	}
	if leverage < 1 {
		return protocol.UserData{}, ErrInvalidLeverage
	}
	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return protocol.UserData{}, ErrAccountNotFound
	}
	pos := &model.Position{
		ID:         s.newID(),
		Direction:  direction,
		Amount:     amount,
		Leverage:   leverage,
		EntryPrice: entryPrice,
		OpenedAt:   time.Now().UTC(),
	}
	acc.Balance = acc.Balance.Sub(amount)
	acc.Positions = append(acc.Positions, pos)
	positionID := pos.ID
	pos.AutoClose = time.AfterFunc(s.cfg.PositionTTL, func() {
		// Already-settled positions make this a no-op inside Settle.
		_, _ = s.Settle(userID, positionID)
	})
	snap := s.snapshotLocked(acc)
	s.mu.Unlock()

	s.notifier.ToAdmins(protocol.NewAdminNotification(types.AdminEventNewPosition, map[string]any{
		"userId":     userID,
		"positionId": pos.ID,
		"tradeType":  direction,
		"amount":     amount,
		"leverage":   leverage,
		"entryPrice": entryPrice,
	}))
	return snap, nil
}

type SettleResult struct {
	PositionID string
	Profit     decimal.Decimal
	Balance    decimal.Decimal
}

// Settle closes a position exactly once, whether invoked by the auto-close
// timer or a manual close request. The position is removed from the open
// set before the payout is computed; a second call for the same identifier
// finds nothing and returns ErrPositionNotFound.
func (s *Service) Settle(userID, positionID string) (SettleResult, error) {
	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return SettleResult{}, ErrAccountNotFound
	}
	idx := -1
	for i, p := range acc.Positions {
		if p.ID == positionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return SettleResult{}, ErrPositionNotFound
	}
	pos := acc.Positions[idx]
	acc.Positions = append(acc.Positions[:idx], acc.Positions[idx+1:]...)
	if pos.AutoClose != nil {
		pos.AutoClose.Stop()
	}

	priceChange := (s.cfg.Sampler() - s.cfg.BiasOffset) * s.cfg.BiasScale
	profit := pos.Amount.
		Mul(decimal.NewFromInt(pos.Leverage)).
		Mul(decimal.NewFromFloat(priceChange)).
		Div(hundred)
	acc.Balance = acc.Balance.Add(pos.Amount).Add(profit)

	res := SettleResult{PositionID: positionID, Profit: profit, Balance: acc.Balance}
	s.mu.Unlock()

	s.notifier.ToAccount(userID, protocol.NewPositionClosed(userID, positionID, res.Profit, res.Balance))
	s.notifier.ToAdmins(protocol.NewAdminNotification(types.AdminEventPositionClosed, map[string]any{
		"userId":     userID,
		"positionId": positionID,
		"profit":     res.Profit,
		"balance":    res.Balance,
	}))
	return res, nil
}
