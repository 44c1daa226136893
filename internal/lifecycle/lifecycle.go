// Package lifecycle runs one hook invocation end to end: validate the input,
// classify it into an event, fan it out to every enabled notifier, and fold
// the results into the hook output.
//
// Nothing escapes Handle. Input errors, extraction errors, delivery failures
// and panics all end in an output with continue set, so a notification
// problem never blocks the host assistant.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/webhook-notifier/internal/hook"
	"github.com/ariel-frischer/webhook-notifier/internal/notify"
)

// Delivery is one notifier's result with its wall time.
type Delivery struct {
	notify.Result
	Duration time.Duration
}

// fanOut sends ev to every notifier concurrently and waits for all of them.
// A failing or panicking notifier never cancels its peers. Results keep the
// order of notifiers.
func fanOut(ctx context.Context, notifiers []notify.Notifier, ev hook.Event) []Delivery {
	deliveries := make([]Delivery, len(notifiers))

	var g errgroup.Group
	for i, n := range notifiers {
		g.Go(func() error {
			deliveries[i] = run(ctx, n, ev)
			return nil // Don't propagate errors to allow other notifiers to continue
		})
	}
	_ = g.Wait()

	return deliveries
}

// run wraps a single Send with timing and panic recovery.
func run(ctx context.Context, n notify.Notifier, ev hook.Event) (d Delivery) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.Result = notify.Result{Notifier: n.Name(), Err: fmt.Errorf("notifier panicked: %v", r)}
		}
		d.Duration = time.Since(start)
	}()

	d.Result = n.Send(ctx, ev)
	if d.Notifier == "" {
		d.Notifier = n.Name()
	}
	return d
}

// countSucceeded returns how many deliveries succeeded.
func countSucceeded(deliveries []Delivery) int {
	ok := 0
	for _, d := range deliveries {
		if d.Success {
			ok++
		}
	}
	return ok
}
