// Package workers runs background maintenance routines.
package workers

import (
	"context"
	"log"
	"time"
)

// CounterReconciler recomputes denormalized participant counters from the
// join ledger. *services.ChallengeService satisfies it.
type CounterReconciler interface {
	ReconcileCounters(ctx context.Context) (int64, error)
}

// StartReconcileWorker sweeps the participant counters on a fixed interval.
// The denormalized counter is only a cache, so a failed sweep is logged and
// retried on the next tick, never fatal.
func StartReconcileWorker(svc CounterReconciler, interval time.Duration, observe func(int64)) {
	ticker := time.NewTicker(interval)

	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			repaired, err := svc.ReconcileCounters(ctx)
			cancel()

			if err != nil {
				log.Printf("Warning: participant counter sweep failed: %v", err)
				continue
			}
			if repaired > 0 {
				log.Printf("Participant counter sweep repaired %d challenge(s)", repaired)
			}
			if observe != nil {
				observe(repaired)
			}
		}
	}()
}
