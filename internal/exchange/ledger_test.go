package exchange

import (
	"testing"
	"time"

	"lv-simtrade/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(n Notifier) *Service {
	cfg := DefaultConfig()
	cfg.PositionTTL = time.Hour
	return NewService(cfg, n)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRegisterIsIdempotent(t *testing.T) {
	n := newFakeNotifier()
	svc := newTestService(n)

	snap, created := svc.Register("alice")
	require.True(t, created)
	assert.True(t, snap.Balance.IsZero())

	snap, created = svc.Register("alice")
	assert.False(t, created)
	assert.True(t, snap.Balance.IsZero())
	assert.Equal(t, 1, svc.AccountCount())

	events := n.adminEvents()
	require.Len(t, events, 1)
	assert.Equal(t, types.AdminEventUserRegistered, events[0].Event)
}

func TestDepositTwiceDoublesBalance(t *testing.T) {
	n := newFakeNotifier()
	svc := newTestService(n)
	svc.Register("alice")

	_, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)
	snap, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)
	assert.True(t, snap.Balance.Equal(dec("200")), "balance = %s", snap.Balance)

	txs := svc.Transactions()
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, types.TransactionTypeDeposit, tx.Type)
		assert.True(t, tx.Amount.Equal(dec("100")))
	}
	assert.True(t, txs[0].CreatedAt.Before(txs[1].CreatedAt) || txs[0].CreatedAt.Equal(txs[1].CreatedAt))
}

func TestDepositValidation(t *testing.T) {
	svc := newTestService(newFakeNotifier())
	svc.Register("alice")

	tests := []struct {
		name   string
		userID string
		amount decimal.Decimal
		want   error
	}{
		{"negative amount", "alice", dec("-5"), ErrInvalidAmount},
		{"zero amount", "alice", dec("0"), ErrInvalidAmount},
		{"unknown account", "bob", dec("5"), ErrAccountNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Deposit(tc.userID, tc.amount)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	snap, err := svc.Snapshot("alice")
	require.NoError(t, err)
	assert.True(t, snap.Balance.IsZero())
	assert.Empty(t, svc.Transactions())
}

func TestSetBalanceRecordsDelta(t *testing.T) {
	n := newFakeNotifier()
	svc := newTestService(n)
	svc.Register("alice")
	_, err := svc.Deposit("alice", dec("30"))
	require.NoError(t, err)

	snap, err := svc.SetBalance("alice", dec("100"))
	require.NoError(t, err)
	assert.True(t, snap.Balance.Equal(dec("100")))

	txs := svc.Transactions()
	require.Len(t, txs, 2)
	adj := txs[1]
	assert.Equal(t, types.TransactionTypeAdjustment, adj.Type)
	assert.True(t, adj.Amount.Equal(dec("70")), "delta = %s", adj.Amount)

	// the account's connections hear about the adjustment
	require.Len(t, n.account["alice"], 1)
}

func TestSetBalanceUnknownAccount(t *testing.T) {
	svc := newTestService(newFakeNotifier())
	_, err := svc.SetBalance("ghost", dec("10"))
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
