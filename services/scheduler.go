// services/scheduler.go
package services

import (
	"log"
	"time"

	"tournament-signup-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartStatusScheduler rolls open tournaments whose start time has passed
// into "en curso" once a minute. Transitions only ever move forward, so the
// job is safe to rerun.
func (s *TournamentService) StartStatusScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			due, err := s.Store.DueOpenTournaments()
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, t := range due {
				if err := s.Store.SetTournamentStatus(t.ID, models.StatusInProgress); err != nil {
					log.Printf("[Scheduler] Failed to start tournament %s: %v", t.ID, err)
				} else {
					log.Printf("✅ Tournament under way: %s", t.Name)
				}
			}
		}),
	)
}
