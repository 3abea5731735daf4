package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imagemarket/internal/config"
	"imagemarket/internal/db"
	"imagemarket/internal/http/router"
	"imagemarket/internal/media"
	"imagemarket/internal/provider"
	"imagemarket/internal/security"
	"imagemarket/internal/store"
)

func main() {
	configPath := flag.String("config", "config/app.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Secret == "" {
		cfg.Secret = randomSecret()
		log.Printf("No secret configured, generated a random one; tokens and sessions will not survive a restart")
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	mediaStore, err := media.New(cfg.Media.Dir, cfg.Media.PublicPrefix, cfg.Media.MaxUploadBytes)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	tokens, err := security.NewTokenIssuer(cfg.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize tokens: %v", err)
	}
	mode, err := security.ParseMode(cfg.Auth.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	sessions, err := security.NewSessionStore(cfg.Secret, cfg.SecureCookies)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	if cfg.Unsplash.AccessKey == "" {
		log.Printf("No Unsplash access key configured; image search will return empty results")
	}

	handler := router.Setup(router.Deps{
		Store:       st,
		Provider:    provider.NewClient(cfg.Unsplash.APIURL, cfg.Unsplash.AccessKey, cfg.Unsplash.Timeout),
		Media:       mediaStore,
		Auth:        security.NewAuthenticator(mode, tokens),
		Tokens:      tokens,
		Sessions:    sessions,
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting server on port %s (store=%s, auth=%s)", cfg.Port, cfg.Store.Driver, mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	if cfg.Driver == "memory" {
		return store.NewMemory(cfg.SeedDemo), nil
	}
	sqlStore, err := db.Init(cfg.Driver, cfg.DSN, cfg.SeedDemo)
	if err != nil {
		return nil, err
	}
	return sqlStore, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}
	return hex.EncodeToString(b)
}
