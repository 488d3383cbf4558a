package exchange

import (
	"time"

	"lv-simtrade/internal/model"
	"lv-simtrade/internal/protocol"
	"lv-simtrade/internal/types"

	"github.com/shopspring/decimal"
)

// Register creates the account on first sight and is a no-op on repeats.
// The second return reports whether the account was created.
func (s *Service) Register(userID string) (protocol.UserData, bool) {
	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		acc = &model.Account{
			ID:        userID,
			Balance:   decimal.Zero,
			CreatedAt: time.Now().UTC(),
		}
		s.accounts[userID] = acc
	}
	snap := s.snapshotLocked(acc)
	s.mu.Unlock()

	if !ok {
		s.notifier.ToAdmins(protocol.NewAdminNotification(types.AdminEventUserRegistered, map[string]string{"userId": userID}))
	}
	return snap, !ok
}

// Deposit credits an existing account and appends a deposit transaction.
func (s *Service) Deposit(userID string, amount decimal.Decimal) (protocol.UserData, error) {
	if !amount.IsPositive() {
		return protocol.UserData{}, ErrInvalidAmount
	}
	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return protocol.UserData{}, ErrAccountNotFound
	}
	acc.Balance = acc.Balance.Add(amount)
	tx := &model.Transaction{
		ID:        s.newID(),
		Type:      types.TransactionTypeDeposit,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	s.transactions = append(s.transactions, tx)
	snap := s.snapshotLocked(acc)
	s.mu.Unlock()

	s.notifier.ToAdmins(protocol.NewAdminNotification(types.AdminEventDeposit, tx))
	return snap, nil
}

// SetBalance replaces an account's balance outright (admin adjustment).
// The appended transaction records the signed delta so the log still sums.
func (s *Service) SetBalance(userID string, balance decimal.Decimal) (protocol.UserData, error) {
	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return protocol.UserData{}, ErrAccountNotFound
	}
	delta := balance.Sub(acc.Balance)
	acc.Balance = balance
	tx := &model.Transaction{
		ID:        s.newID(),
		Type:      types.TransactionTypeAdjustment,
		UserID:    userID,
		Amount:    delta,
		CreatedAt: time.Now().UTC(),
	}
	s.transactions = append(s.transactions, tx)
	snap := s.snapshotLocked(acc)
	s.mu.Unlock()

	s.notifier.ToAccount(userID, snap)
	s.notifier.ToAdmins(protocol.NewAdminNotification(types.AdminEventBalanceUpdate, tx))
	return snap, nil
}

// Transactions returns a copy of the log, oldest first.
func (s *Service) Transactions() []*model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		cp := *tx
		out = append(out, &cp)
	}
	return out
}

// Snapshot returns the user-data view of an account.
func (s *Service) Snapshot(userID string) (protocol.UserData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return protocol.UserData{}, ErrAccountNotFound
	}
	return s.snapshotLocked(acc), nil
}
