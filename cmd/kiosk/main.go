package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	tb "gopkg.in/telebot.v3"

	"github.com/MDharunPrasad/photo-kiosk/internal/bootstrap"
	"github.com/MDharunPrasad/photo-kiosk/internal/bundles"
	"github.com/MDharunPrasad/photo-kiosk/internal/config"
	"github.com/MDharunPrasad/photo-kiosk/internal/kvstore"
	"github.com/MDharunPrasad/photo-kiosk/internal/logging"
	"github.com/MDharunPrasad/photo-kiosk/internal/server"
	"github.com/MDharunPrasad/photo-kiosk/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("[MAIN] load config", "err", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Logger.Level, AppEnv: cfg.Logger.AppEnv})

	kv, err := kvstore.Open(cfg.Store.DBPath, cfg.Store.Capacity)
	if err != nil {
		slog.Error("[MAIN] open storage", "path", cfg.Store.DBPath, "err", err)
		os.Exit(1)
	}

	catalog, err := bundles.Load(cfg.Store.BundlesFile)
	if err != nil {
		slog.Error("[MAIN] load bundle catalog", "file", cfg.Store.BundlesFile, "err", err)
		os.Exit(1)
	}

	hub := server.NewHub()
	go hub.Run()

	notifier := newNotifier(cfg.TG)

	st, err := bootstrap.Hydrate(kv,
		store.WithOnEvent(hub.Publish),
		store.WithOnStorageFull(notifier.StorageFull),
	)
	if err != nil {
		slog.Error("[MAIN] hydrate store", "err", err)
		os.Exit(1)
	}

	router := server.NewRouter(server.Deps{
		Store:   st,
		Catalog: catalog,
		Upload:  cfg.Upload,
		Hub:     hub,
	})

	slog.Info("[MAIN] kiosk is up", "addr", cfg.HTTP.Addr, "db", cfg.Store.DBPath)
	if err := http.ListenAndServe(cfg.HTTP.Addr, router); err != nil {
		slog.Error("[MAIN] http server", "err", err)
		os.Exit(1)
	}
}

// newNotifier - the alert channel is optional; without a token the
// returned nil Notifier swallows every call.
func newNotifier(cfg config.TGConfig) *logging.Notifier {
	if cfg.Token == "" {
		return nil
	}

	bot, err := tb.NewBot(tb.Settings{
		Token:  cfg.Token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		slog.Warn("[MAIN] telegram alerts disabled", "err", err)
		return nil
	}
	return logging.NewNotifier(bot, cfg.AdminIDs)
}
