package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lv-simtrade/internal/admin"
	"lv-simtrade/internal/config"
	"lv-simtrade/internal/db"
	"lv-simtrade/internal/exchange"
	"lv-simtrade/internal/health"
	"lv-simtrade/internal/httpserver"
	"lv-simtrade/internal/hub"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.UIDist != "" {
		if _, err := os.Stat(cfg.UIDist); err != nil {
			log.Fatal(err)
		}
	}
	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.DBDSN != "" {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Fatal(err)
		}
	}

	connHub := hub.NewHub()
	svcCfg := exchange.DefaultConfig()
	svcCfg.PositionTTL = cfg.PositionTTL
	svcCfg.BiasOffset = cfg.SettleBiasOffset
	svcCfg.BiasScale = cfg.SettleBiasScale
	svc := exchange.NewService(svcCfg, connHub)

	var tokens *admin.TokenIssuer
	if cfg.JWTSecret != "" {
		tokens = admin.NewTokenIssuer([]byte(cfg.JWTSecret), 24*time.Hour)
	}
	gate := admin.NewGate(connHub, svc, cfg.AdminSecret, tokens)
	wsRouter := httpserver.NewWSRouter(svc, connHub, gate)
	wsHandler := httpserver.NewWSHandler(connHub, wsRouter, cfg.WSOrigin)
	healthHandler := health.NewHandler(connHub, svc, pool, time.Now())

	router := httpserver.NewRouter(httpserver.RouterDeps{
		WSHandler:     wsHandler,
		HealthHandler: healthHandler,
		UIDist:        cfg.UIDist,
		Production:    cfg.Production(),
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	log.Printf("server listening on %s (%s mode)", cfg.HTTPAddr, cfg.Mode)
	log.Printf("health endpoint: http://localhost%s/health", cfg.HTTPAddr)
	if cfg.UIDist != "" {
		log.Printf("ui dist: %s", cfg.UIDist)
	}
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
