package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/partyplus/server/internal/config"
	"github.com/partyplus/server/internal/kv/sqlite"
	"github.com/partyplus/server/internal/metrics"
	"github.com/partyplus/server/internal/middleware"
	"github.com/partyplus/server/internal/service"
	"github.com/partyplus/server/internal/store"
	"github.com/partyplus/server/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	// Initialize the SQLite-backed key-value store
	kvs, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer kvs.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	partyStore := store.New(kvs)

	mux := http.NewServeMux()

	// Register party routes
	service.NewPartyService(partyStore, cfg.InviteBaseURL).Register(mux)

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	handler := middleware.Logging(middleware.CORS(metrics.Middleware(mux)))

	// Wrap with h2c so HTTP/2 works without TLS behind a local proxy
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting",
		"address", addr,
		"environment", cfg.Environment,
		"invite_base_url", cfg.InviteBaseURL,
	)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
