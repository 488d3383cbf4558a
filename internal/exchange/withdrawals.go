package exchange

import (
	"time"

	"lv-simtrade/internal/model"
	"lv-simtrade/internal/protocol"
	"lv-simtrade/internal/types"

	"github.com/shopspring/decimal"
)

// RequestWithdrawal records a pending withdrawal intent. Balance is not
// touched until an admin approves.
func (s *Service) RequestWithdrawal(userID string, amount decimal.Decimal, wallet string) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	s.mu.Lock()
	if _, ok := s.accounts[userID]; !ok {
		s.mu.Unlock()
		return nil, ErrAccountNotFound
	}
	tx := &model.Transaction{
		ID:        s.newID(),
		Type:      types.TransactionTypeWithdrawRequest,
		UserID:    userID,
		Amount:    amount,
		Wallet:    wallet,
		Status:    types.WithdrawStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.transactions = append(s.transactions, tx)
	cp := *tx
	s.mu.Unlock()

	s.notifier.ToAdmins(protocol.NewAdminNotification(types.AdminEventWithdrawRequest, &cp))
	return &cp, nil
}

// DecideWithdrawal settles a pending request one-shot. A non-empty
// requestID targets that request exactly; otherwise the oldest pending
// request with matching account and amount is taken. Approval debits the
// balance at decision time.
func (s *Service) DecideWithdrawal(userID string, amount decimal.Decimal, requestID string, approve bool) (*model.Transaction, error) {
	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrAccountNotFound
	}
	var req *model.Transaction
	for _, tx := range s.transactions {
		if tx.Type != types.TransactionTypeWithdrawRequest || tx.UserID != userID {
			continue
		}
		if requestID != "" {
			if tx.ID == requestID {
				req = tx
				break
			}
			continue
		}
		if tx.Status == types.WithdrawStatusPending && tx.Amount.Equal(amount) {
			req = tx
			break
		}
	}
	if req == nil {
		s.mu.Unlock()
		return nil, ErrNoPendingWithdrawal
	}
	if req.Status != types.WithdrawStatusPending {
		s.mu.Unlock()
		return nil, ErrWithdrawalSettled
	}

	status := types.WithdrawStatusRejected
	if approve {
		status = types.WithdrawStatusApproved
		acc.Balance = acc.Balance.Sub(req.Amount)
	}
	req.Status = status
	decision := &model.Transaction{
		ID:        s.newID(),
		Type:      types.TransactionTypeWithdrawDecide,
		UserID:    userID,
		Amount:    req.Amount,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	s.transactions = append(s.transactions, decision)
	reqCopy := *req
	var snap protocol.UserData
	if approve {
		snap = s.snapshotLocked(acc)
	}
	s.mu.Unlock()

	if approve {
		s.notifier.ToAccount(userID, snap)
	}
	s.notifier.ToAdmins(protocol.NewAdminNotification(types.AdminEventWithdrawDecide, &reqCopy))
	return &reqCopy, nil
}
