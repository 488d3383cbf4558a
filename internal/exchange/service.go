// Package exchange owns the venue state: accounts, the transaction log and
// the open-position set. All mutation happens under one mutex so envelope
// handlers and settlement timers never interleave on shared state.
package exchange

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"lv-simtrade/internal/model"
	"lv-simtrade/internal/protocol"
	"lv-simtrade/internal/types"

	"github.com/oklog/ulid/v2"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidLeverage     = errors.New("leverage must be a positive integer")
	ErrPositionNotFound    = errors.New("position not found")
	ErrNoPendingWithdrawal = errors.New("no matching pending withdrawal")
	ErrWithdrawalSettled   = errors.New("withdrawal already decided")
)

// Notifier fans messages out to connections. Implementations must not
// block; delivery is fire-and-forget.
type Notifier interface {
	ToAccount(userID string, msg any)
	ToAdmins(msg any)
}

// Config carries the settlement policy. The price-change factor applied at
// settlement is (U - BiasOffset) * BiasScale with U drawn from Sampler; the
// default offset skews outcomes toward losses.
type Config struct {
	PositionTTL time.Duration
	BiasOffset  float64
	BiasScale   float64
	Sampler     func() float64
}

func DefaultConfig() Config {
	return Config{
		PositionTTL: 10 * time.Second,
		BiasOffset:  0.4,
		BiasScale:   10,
		Sampler:     rand.Float64,
	}
}

type Service struct {
	cfg      Config
	notifier Notifier

	mu           sync.Mutex
	accounts     map[string]*model.Account
	transactions []*model.Transaction
}

func NewService(cfg Config, notifier Notifier) *Service {
	if cfg.PositionTTL <= 0 {
		cfg.PositionTTL = 10 * time.Second
	}
	if cfg.BiasScale == 0 {
		cfg.BiasScale = 10
	}
	if cfg.Sampler == nil {
		cfg.Sampler = rand.Float64
	}
	return &Service{
		cfg:      cfg,
		notifier: notifier,
		accounts: make(map[string]*model.Account),
	}
}

func (s *Service) AccountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// AdminSnapshot returns the full venue state pushed to an admin on
// promotion: every account, the transaction log and the pending
// withdrawals.
func (s *Service) AdminSnapshot() protocol.AdminData {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*model.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, s.copyAccountLocked(acc))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	txs := make([]*model.Transaction, 0, len(s.transactions))
	var pending []*model.Transaction
	for _, tx := range s.transactions {
		cp := *tx
		txs = append(txs, &cp)
		if tx.Type == types.TransactionTypeWithdrawRequest && tx.Status == types.WithdrawStatusPending {
			pcp := cp
			pending = append(pending, &pcp)
		}
	}
	return protocol.NewAdminData(users, txs, pending)
}

func (s *Service) newID() string {
	return ulid.Make().String()
}

// snapshotLocked builds a user-data message from a live account. Positions
// are copied so the caller can marshal without holding the lock.
func (s *Service) snapshotLocked(acc *model.Account) protocol.UserData {
	cp := s.copyAccountLocked(acc)
	return protocol.NewUserData(cp.ID, cp.Balance, cp.Positions)
}

func (s *Service) copyAccountLocked(acc *model.Account) *model.Account {
	positions := make([]*model.Position, 0, len(acc.Positions))
	for _, p := range acc.Positions {
		pcp := *p
		pcp.AutoClose = nil
		positions = append(positions, &pcp)
	}
	return &model.Account{
		ID:        acc.ID,
		Balance:   acc.Balance,
		Positions: positions,
		CreatedAt: acc.CreatedAt,
	}
}
