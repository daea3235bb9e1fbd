package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/partyboard/internal/party/render"
	"github.com/louisbranch/partyboard/internal/party/storage/sqlite"
	"github.com/louisbranch/partyboard/internal/platform/timeouts"
)

// RuntimeConfig wires the party engine process. Display is required; the
// command layer constructs it so this package stays transport-agnostic.
type RuntimeConfig struct {
	Port         int
	DBPath       string
	TickInterval time.Duration
	Locale       language.Tag
	Display      DisplaySurface
	Identity     IdentityLookup
	Notifier     Notifier
}

// Run opens storage, reconciles every open party's display artifact, and
// serves the promotion scheduler plus a health endpoint until ctx ends.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open party store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close party store: %v", err)
		}
	}()

	service, err := NewService(store, cfg.Display, cfg.Identity, cfg.Notifier, render.NewLocalizer(cfg.Locale), time.Now)
	if err != nil {
		return err
	}

	resyncOpenParties(ctx, service, store)

	scheduler := NewScheduler(service, cfg.TickInterval)
	schedulerDone := make(chan error, 1)
	go func() {
		schedulerDone <- scheduler.Run(ctx)
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           healthHandler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	serverDone := make(chan error, 1)
	go func() {
		log.Printf("party engine listening on %s", server.Addr)
		serverDone <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverDone:
		return fmt.Errorf("health server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown health server: %v", err)
	}
	if err := <-schedulerDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("scheduler stopped: %v", err)
	}
	return nil
}

// resyncOpenParties re-renders every open party after a restart so display
// artifacts that drifted while the process was down converge again.
func resyncOpenParties(ctx context.Context, service *Service, store *sqlite.Store) {
	listCtx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	handles, err := store.ListOpen(listCtx)
	cancel()
	if err != nil {
		log.Printf("list open parties: %v", err)
		return
	}
	for _, handle := range handles {
		if err := service.Refresh(ctx, handle); err != nil {
			log.Printf("resync party %s: %v", handle, err)
		}
	}
	log.Printf("resynced %d open parties", len(handles))
}

func healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
