package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"clubroster/internal/api"
	"clubroster/internal/auth"
	"clubroster/internal/config"
	"clubroster/internal/db"
	"clubroster/internal/provider"
	"clubroster/internal/service"
	"clubroster/internal/store"
	"clubroster/internal/sweeper"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	if err := db.ApplyMigrationFile(conn, "migrations/001_init.sql"); err != nil {
		log.Fatalf("migration: %v", err)
	}

	st := store.New(conn, cfg.DBDriver)
	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		hash, err := auth.HashPassword(cfg.BootstrapAdminPassword)
		if err != nil {
			log.Fatalf("bootstrap admin hash: %v", err)
		}
		if err := st.EnsureAdmin(context.Background(), cfg.BootstrapAdminEmail, cfg.BootstrapAdminName, hash); err != nil {
			log.Fatalf("bootstrap admin create: %v", err)
		}
	}

	var exch provider.Exchanger
	if cfg.AuthProviderURL != "" {
		exch = provider.NewHTTPExchanger(cfg.AuthProviderURL, cfg.AuthProviderTimeout)
	}

	svc := service.New(cfg, st, exch)
	if err := svc.EnsureDefaultOptions(context.Background()); err != nil {
		log.Fatalf("seed vehicle options: %v", err)
	}

	if cfg.SweepEnabled {
		go sweeper.New(svc, cfg.SweepInterval).Run(context.Background())
	}

	r := api.NewRouter(cfg, svc, st)
	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	log.Printf("listening on %s driver=%s", cfg.ListenAddr, cfg.DBDriver)
	if err := hsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
