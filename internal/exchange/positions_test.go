package exchange

import (
	"sync"
	"testing"
	"time"

	"lv-simtrade/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSampler makes settlement deterministic. Offset 0 and scale 10 with
// a draw of 0.1 reproduce a price-change factor of exactly 1.
func serviceWithSampler(n Notifier, ttl time.Duration, offset, scale, draw float64) *Service {
	return NewService(Config{
		PositionTTL: ttl,
		BiasOffset:  offset,
		BiasScale:   scale,
		Sampler:     func() float64 { return draw },
	}, n)
}

func TestOpenPositionDebitsMarginUpFront(t *testing.T) {
	svc := newTestService(newFakeNotifier())
	svc.Register("alice")
	_, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)

	snap, err := svc.OpenPosition("alice", types.TradeDirectionLong, dec("40"), 3, dec("1.25"))
	require.NoError(t, err)
	assert.True(t, snap.Balance.Equal(dec("60")), "balance = %s", snap.Balance)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, int64(3), snap.Positions[0].Leverage)
}

func TestOpenPositionValidation(t *testing.T) {
	svc := newTestService(newFakeNotifier())
	svc.Register("alice")

	_, err := svc.OpenPosition("alice", types.TradeDirectionLong, dec("-1"), 2, dec("1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.OpenPosition("alice", types.TradeDirectionLong, dec("1"), 0, dec("1"))
	assert.ErrorIs(t, err, ErrInvalidLeverage)
	_, err = svc.OpenPosition("bob", types.TradeDirectionLong, dec("1"), 2, dec("1"))
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

// Register alice, deposit 100, open 50 at 2x, close with factor 1: profit
// is 50*2*1/100 = 1 and the margin comes back exactly once.
func TestManualCloseScenario(t *testing.T) {
	n := newFakeNotifier()
	svc := serviceWithSampler(n, time.Hour, 0, 10, 0.1)
	svc.Register("alice")
	_, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)

	snap, err := svc.OpenPosition("alice", types.TradeDirectionLong, dec("50"), 2, dec("1.2"))
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	posID := snap.Positions[0].ID
	assert.True(t, snap.Balance.Equal(dec("50")))

	res, err := svc.Settle("alice", posID)
	require.NoError(t, err)
	assert.True(t, res.Profit.Equal(dec("1")), "profit = %s", res.Profit)
	assert.True(t, res.Balance.Equal(dec("51")), "balance = %s", res.Balance)

	after, err := svc.Snapshot("alice")
	require.NoError(t, err)
	assert.Empty(t, after.Positions)

	// second close of the same identifier is a no-op
	_, err = svc.Settle("alice", posID)
	assert.ErrorIs(t, err, ErrPositionNotFound)
	assert.Len(t, n.positionClosed("alice"), 1)

	after, err = svc.Snapshot("alice")
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(dec("51")))
}

func TestSettleLoss(t *testing.T) {
	// draw 0.2 with offset 0.4 and scale 10 is a factor of -2
	n := newFakeNotifier()
	svc := serviceWithSampler(n, time.Hour, 0.4, 10, 0.2)
	svc.Register("alice")
	_, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)
	snap, err := svc.OpenPosition("alice", types.TradeDirectionShort, dec("50"), 2, dec("1"))
	require.NoError(t, err)

	res, err := svc.Settle("alice", snap.Positions[0].ID)
	require.NoError(t, err)
	assert.True(t, res.Profit.Equal(dec("-2")), "profit = %s", res.Profit)
	assert.True(t, res.Balance.Equal(dec("98")), "balance = %s", res.Balance)
}

func TestSettleExactlyOnceUnderContention(t *testing.T) {
	n := newFakeNotifier()
	svc := serviceWithSampler(n, time.Hour, 0, 10, 0.1)
	svc.Register("alice")
	_, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)
	snap, err := svc.OpenPosition("alice", types.TradeDirectionLong, dec("50"), 2, dec("1"))
	require.NoError(t, err)
	posID := snap.Positions[0].ID

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	settled := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Settle("alice", posID); err == nil {
				mu.Lock()
				settled++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
	assert.Len(t, n.positionClosed("alice"), 1)
	after, err := svc.Snapshot("alice")
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(dec("51")), "balance = %s", after.Balance)
}

func TestAutoCloseTimerSettles(t *testing.T) {
	n := newFakeNotifier()
	svc := serviceWithSampler(n, 20*time.Millisecond, 0, 10, 0.1)
	svc.Register("alice")
	_, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)
	_, err = svc.OpenPosition("alice", types.TradeDirectionLong, dec("50"), 2, dec("1"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(n.positionClosed("alice")) == 1
	}, time.Second, 5*time.Millisecond)

	after, err := svc.Snapshot("alice")
	require.NoError(t, err)
	assert.Empty(t, after.Positions)
	assert.True(t, after.Balance.Equal(dec("51")))
}

func TestManualCloseStopsAutoCloseTimer(t *testing.T) {
	n := newFakeNotifier()
	svc := serviceWithSampler(n, 30*time.Millisecond, 0, 10, 0.1)
	svc.Register("alice")
	_, err := svc.Deposit("alice", dec("100"))
	require.NoError(t, err)
	snap, err := svc.OpenPosition("alice", types.TradeDirectionLong, dec("50"), 2, dec("1"))
	require.NoError(t, err)

	_, err = svc.Settle("alice", snap.Positions[0].ID)
	require.NoError(t, err)

	// wait past the TTL: the timer must not settle a second time
	time.Sleep(80 * time.Millisecond)
	assert.Len(t, n.positionClosed("alice"), 1)
	after, err := svc.Snapshot("alice")
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(dec("51")))
}

func TestSettleUnknownAccountIsNoOp(t *testing.T) {
	svc := newTestService(newFakeNotifier())
	_, err := svc.Settle("ghost", "nope")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
