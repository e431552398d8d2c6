package scanner

import (
	"context"
	"testing"
	"time"

	"radar-screener/internal/models"
)

type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSource) FetchPrice(ctx context.Context, slug string) (float64, error) {
	b.entered <- struct{}{}
	<-b.release
	return 100, nil
}

func TestSchedulerDropsOverlappingTrigger(t *testing.T) {
	products := &fakeProducts{products: []models.Product{product(1, "slow")}}
	source := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	s := New(products, &fakePrices{}, &fakeAlerts{}, source, &fakeNotifier{}, 15, 6*time.Hour)
	scheduler := NewScheduler(s, time.Hour)

	firstDone := make(chan error, 1)
	go func() {
		_, _, err := scheduler.Trigger(context.Background())
		firstDone <- err
	}()

	// Wait until the first scan is inside the price fetch.
	<-source.entered

	_, ran, err := scheduler.Trigger(context.Background())
	if err != nil {
		t.Fatalf("second trigger error = %v", err)
	}
	if ran {
		t.Error("a trigger during an in-flight scan must be dropped")
	}

	close(source.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first scan error = %v", err)
	}

	// With the first scan finished a new trigger runs again.
	go func() { <-source.entered; close(source.entered) }()
	source.release = make(chan struct{})
	close(source.release)
	if _, ran, _ := scheduler.Trigger(context.Background()); !ran {
		t.Error("trigger after completion must run")
	}
}

func TestSchedulerNextRun(t *testing.T) {
	products := &fakeProducts{}
	s := New(products, &fakePrices{}, &fakeAlerts{}, &fakeSource{}, &fakeNotifier{}, 15, 6*time.Hour)
	scheduler := NewScheduler(s, time.Hour)

	if !scheduler.NextRun().IsZero() {
		t.Error("NextRun must be zero before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if scheduler.NextRun().IsZero() {
		t.Error("NextRun must be set after Start")
	}

	// The immediate first scan moves the next run one interval out.
	deadline := time.After(2 * time.Second)
	for scheduler.NextRun().Before(time.Now()) {
		select {
		case <-deadline:
			t.Fatal("next run was not advanced after the initial scan")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if until := time.Until(scheduler.NextRun()); until > time.Hour {
		t.Errorf("next run %v away, want at most the interval", until)
	}
}
