// Package jobs runs the background maintenance work: the nightly
// data-repair pass over the remote store.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/Universesboy/french-streak-app/services"
)

type Scheduler struct {
	cron       *cron.Cron
	data       *services.DataService
	repairSpec string
}

func NewScheduler(data *services.DataService, repairSpec string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		data:       data,
		repairSpec: repairSpec,
	}
}

// Start schedules the jobs and kicks off the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.repairSpec, func() {
		log.Println("[CRON] Running nightly data repair")
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		count, err := s.data.RepairAll(runCtx, time.Now())
		if err != nil {
			log.Printf("[CRON] Data repair failed: %v", err)
			return
		}
		log.Printf("[CRON] Data repair complete, %d users processed", count)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Scheduler started (repair at %q)", s.repairSpec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}
