package health

import (
	"context"
	"net/http"
	"time"

	"lv-simtrade/internal/exchange"
	"lv-simtrade/internal/httputil"
	"lv-simtrade/internal/hub"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	hub       *hub.Hub
	svc       *exchange.Service
	pool      *pgxpool.Pool
	startedAt time.Time
}

// NewHandler builds the health endpoint. pool may be nil when no database
// is configured.
func NewHandler(h *hub.Hub, svc *exchange.Service, pool *pgxpool.Pool, startedAt time.Time) *Handler {
	start := startedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Handler{hub: h, svc: svc, pool: pool, startedAt: start}
}

type healthResponse struct {
	Status      string         `json:"status"`
	Timestamp   string         `json:"timestamp"`
	UptimeSec   int64          `json:"uptime_sec"`
	Uptime      string         `json:"uptime"`
	Connections int            `json:"connections"`
	Admins      int            `json:"admins"`
	Accounts    int            `json:"accounts"`
	Database    *databaseStats `json:"database,omitempty"`
}

type databaseStats struct {
	Reachable bool   `json:"reachable"`
	PingMs    int64  `json:"ping_ms"`
	Error     string `json:"error,omitempty"`
	CheckedAt string `json:"checked_at"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	uptime := now.Sub(h.startedAt)
	if uptime < 0 {
		uptime = 0
	}
	connections, admins := h.hub.Counts()

	resp := healthResponse{
		Status:      "ok",
		Timestamp:   now.Format(time.RFC3339),
		UptimeSec:   int64(uptime.Seconds()),
		Uptime:      uptime.String(),
		Connections: connections,
		Admins:      admins,
		Accounts:    h.svc.AccountCount(),
	}
	status := http.StatusOK
	if h.pool != nil {
		db := h.collectDB(r.Context())
		resp.Database = &db
		if !db.Reachable {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) collectDB(ctx context.Context) databaseStats {
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	start := time.Now()
	err := h.pool.Ping(pingCtx)
	out := databaseStats{
		Reachable: err == nil,
		PingMs:    time.Since(start).Milliseconds(),
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
