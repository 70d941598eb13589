package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/Bright579523/data-analytics-onlineRetail/internal/config"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/handlers/dashboard"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/logger"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/services/dataloader"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/services/metrics"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/services/storage"
	"github.com/Bright579523/data-analytics-onlineRetail/internal/version"
)

var (
	cfg    *config.Config
	store  *storage.Storage
	loader *dataloader.DataLoader
	log    zerolog.Logger
)

func main() {
	initEncryption := flag.Bool("init-encryption", false, "Encrypt the data directory and exit")
	flag.Parse()

	cfg = config.Load()
	log = logger.New(cfg.Debug)

	log.Info().Str("addr", cfg.ListenAddr).Str("dataset", cfg.DatasetPath()).Msg("starting retail dashboard")

	if err := SetupDependencies(cfg); err != nil {
		log.Fatal().Err(err).Msg("setup failed")
	}

	if *initEncryption {
		password, err := promptPassword("Choose a data directory password: ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not read password")
		}
		if err := store.EnableEncryption(password); err != nil {
			log.Fatal().Err(err).Msg("could not enable encryption")
		}
		log.Info().Str("dir", store.BaseDir()).Msg("data directory encrypted")
		return
	}

	if store.IsEncrypted() && !store.IsUnlocked() {
		password, err := promptPassword("Data directory password: ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not read password")
		}
		if err := store.Unlock(password); err != nil {
			log.Fatal().Err(err).Msg("could not unlock data directory")
		}
	}

	// Warm the cache; without the dataset nothing downstream can run
	if _, _, err := loader.Load(); err != nil {
		log.Fatal().Err(err).Msg("dataset load failed")
	}

	r := SetupRouter()

	log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// SetupDependencies wires storage, loader and handlers for the given config
func SetupDependencies(cfg *config.Config) error {
	var err error
	store, err = storage.New(cfg.DataDirectory)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	loader = dataloader.New(cfg.DatasetPath(), store, log)
	dashboard.Initialize(loader, metrics.New(), log)

	return nil
}

// SetupRouter builds the chi router with all routes and middleware
func SetupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
	})

	dashboard.RegisterRoutes(r)

	r.Get("/api/health", handleHealth)
	r.Get("/api/version", handleVersion)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"snapshot": loader.SnapshotID(),
	})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version.Get())
}

// promptPassword reads a password from the terminal without echo
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}
