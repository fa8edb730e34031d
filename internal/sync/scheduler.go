package sync

import (
	"context"
	"log"
	"sync"
	"time"

	authrepo "jobtrail-backend/internal/auth/repository"
)

// Scheduler polls Gmail for every syncable user on a fixed interval. User
// runs are concurrent but bounded, and each run carries its own timeout so a
// stuck mailbox cannot wedge the loop.
type Scheduler struct {
	orchestrator *Orchestrator
	users        authrepo.UserRepository
	interval     time.Duration
	runTimeout   time.Duration
	maxUsers     int
	stopChan     chan struct{}
}

func NewScheduler(orchestrator *Orchestrator, users authrepo.UserRepository, interval, runTimeout time.Duration, maxUsers int) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}
	if maxUsers <= 0 {
		maxUsers = 4
	}
	return &Scheduler{
		orchestrator: orchestrator,
		users:        users,
		interval:     interval,
		runTimeout:   runTimeout,
		maxUsers:     maxUsers,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	log.Printf("[SYNC] Starting Gmail sync scheduler (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.syncAllUsers()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.syncAllUsers()
			case <-s.stopChan:
				log.Println("[SYNC] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) syncAllUsers() {
	users, err := s.users.FindSyncable()
	if err != nil {
		log.Printf("[SYNC] Error listing syncable users: %v", err)
		return
	}
	if len(users) == 0 {
		return
	}

	sem := make(chan struct{}, s.maxUsers)
	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(userID string) {
			defer wg.Done()
			defer func() { <-sem }()

			ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
			defer cancel()

			if err := s.orchestrator.SyncUser(ctx, userID); err != nil {
				log.Printf("[SYNC] user=%s run failed: %v", userID, err)
			}
		}(user.ID)
	}
	wg.Wait()
}
