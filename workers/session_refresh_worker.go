// workers/session_refresh_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"tournament-signup-system/services"
)

// SessionRefreshWorker periodically re-reconciles every registered session
// so promoted admins pick up their new claim without waiting for a manual
// refresh. Claim changes made between ticks stay invisible until the next
// forced refresh — that lag is inherent to token-based authorization.
type SessionRefreshWorker struct {
	registry *services.SessionRegistry
	interval time.Duration
}

func NewSessionRefreshWorker(registry *services.SessionRegistry, interval time.Duration) *SessionRefreshWorker {
	return &SessionRefreshWorker{
		registry: registry,
		interval: interval,
	}
}

func (w *SessionRefreshWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Session Refresh Worker…")
	go w.run(ctx)
}

func (w *SessionRefreshWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := w.registry.RefreshAll()
			if n > 0 {
				log.Printf("[SESSION_REFRESH] 🔄 refreshed %d active session(s)", n)
			}
		case <-ctx.Done():
			log.Println("⏹️ Session Refresh Worker stopped")
			return
		}
	}
}
