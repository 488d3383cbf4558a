package exchange

import (
	"sync"

	"lv-simtrade/internal/protocol"
)

// fakeNotifier records fan-out for assertions.
type fakeNotifier struct {
	mu      sync.Mutex
	account map[string][]any
	admin   []any
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{account: make(map[string][]any)}
}

func (f *fakeNotifier) ToAccount(userID string, msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.account[userID] = append(f.account[userID], msg)
}

func (f *fakeNotifier) ToAdmins(msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = append(f.admin, msg)
}

func (f *fakeNotifier) positionClosed(userID string) []protocol.PositionClosed {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []protocol.PositionClosed
	for _, msg := range f.account[userID] {
		if pc, ok := msg.(protocol.PositionClosed); ok {
			out = append(out, pc)
		}
	}
	return out
}

func (f *fakeNotifier) adminEvents() []protocol.AdminNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []protocol.AdminNotification
	for _, msg := range f.admin {
		if n, ok := msg.(protocol.AdminNotification); ok {
			out = append(out, n)
		}
	}
	return out
}
