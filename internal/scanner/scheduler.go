package scanner

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler runs ScanAll on a fixed interval and on demand. A single
// instance is constructed at startup and shared with the API layer, so
// there is no package-level timer state.
//
// Overlap policy: a trigger arriving while a scan is in flight is dropped
// with a log line. Dip detection works on a 30-day window, so skipping one
// cycle is harmless.
type Scheduler struct {
	scanner  *Scanner
	interval time.Duration

	mu       sync.Mutex
	inFlight bool
	nextRun  time.Time
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(scanner *Scanner, interval time.Duration) *Scheduler {
	return &Scheduler{
		scanner:  scanner,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop and triggers an immediate first scan.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.nextRun = time.Now()
	s.mu.Unlock()

	go s.loop(ctx)
	log.Printf("Scheduler started, scanning every %v", s.interval)
}

// Stop terminates the loop. The in-flight scan, if any, finishes its
// current product sequence via context cancellation by the caller.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// NextRun returns the next scheduled scan time, zero before Start.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// Trigger runs a scan now unless one is already in flight, in which case
// it is skipped. Used by both the timer loop and the manual /scan endpoint.
func (s *Scheduler) Trigger(ctx context.Context) (ScanResult, bool, error) {
	if !s.acquire() {
		log.Println("Scan already in progress, trigger skipped")
		return ScanResult{}, false, nil
	}
	defer s.release()

	result, err := s.scanner.ScanAll(ctx)
	return result, true, err
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	// First scan fires immediately.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
			s.mu.Lock()
			s.nextRun = time.Now().Add(s.interval)
			s.mu.Unlock()

			if _, ran, err := s.Trigger(ctx); ran && err != nil {
				log.Printf("Scheduled scan failed: %v", err)
			}
			timer.Reset(s.interval)
		}
	}
}

func (s *Scheduler) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
