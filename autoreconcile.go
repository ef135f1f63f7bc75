package mathflix

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/adhocore/gronx"

	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/logging"
)

// AutoReconciler provides controls for scheduled reconciliation.
type AutoReconciler interface {
	// AutoReconcileOn starts scheduled reconciliation
	AutoReconcileOn() error

	// AutoReconcileOff stops scheduled reconciliation
	AutoReconcileOff() error
}

// AutoReconcileOn starts scheduled reconciliation. A configured cron
// expression wins over the interval.
func (c *client) AutoReconcileOn() error {
	if c.options.autoReconcileCron == "" && c.options.autoReconcileEvery <= 0 {
		return &errors.ValidationError{
			Field:   "autoReconcileInterval",
			Value:   c.options.autoReconcileEvery,
			Message: "reconcile interval must be positive",
		}
	}

	// Stop any existing schedule to prevent resource leaks
	if err := c.AutoReconcileOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelUpdate = cancel
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})

	go c.runSchedule(ctx, c.stopCh, c.doneCh)
	return nil
}

// next returns the time of the next scheduled run after now.
func (c *client) next(now time.Time) (time.Time, error) {
	if expr := c.options.autoReconcileCron; expr != "" {
		return gronx.NextTickAfter(expr, now, false)
	}
	return now.Add(c.options.autoReconcileEvery), nil
}

func (c *client) runSchedule(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		at, err := c.next(c.options.now())
		if err != nil {
			logging.Error().Err(err).Str("cron", c.options.autoReconcileCron).Msg("cannot compute next reconcile time")
			return
		}
		timer := time.NewTimer(time.Until(at))

		select {
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, constants.ReconcileTimeout)
			_, err := c.Reconcile(runCtx)
			cancel()

			if err != nil {
				if stderrors.Is(err, context.Canceled) {
					return
				}
				// Log other errors but continue
				logging.Error().Err(err).Msg("scheduled reconcile failed")
			}
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stopCh:
			timer.Stop()
			return
		}
	}
}

// AutoReconcileOff stops scheduled reconciliation and waits for a running
// cycle to finish.
func (c *client) AutoReconcileOff() error {
	c.autoMu.Lock()
	cancel, stopCh, doneCh := c.cancelUpdate, c.stopCh, c.doneCh
	c.cancelUpdate, c.stopCh, c.doneCh = nil, nil, nil
	c.autoMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stopCh != nil {
		close(stopCh)
	}
	if doneCh != nil {
		<-doneCh
	}
	return nil
}
