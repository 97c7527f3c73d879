// internal/app/system/workers/deadlinescanner.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	requeststore "github.com/dalemusser/sessionhub/internal/app/store/requests"
	"github.com/dalemusser/sessionhub/internal/app/system/timeouts"
	"github.com/dalemusser/sessionhub/internal/domain/models"
	"go.uber.org/zap"
)

// DeadlineScanner is the single authoritative trigger for time-driven
// lifecycle events. Each tick it compares wall-clock time against stored
// deadlines and injects the matching events through the runner:
//
//   - funding requests past their payment deadline → DeadlineExpired
//   - payment-complete requests inside the link window → IssueConferenceLink
//   - payment-complete requests past their start time → AdvanceToInProgress
//
// Duplicate deliveries are harmless: the engine turns them into
// idempotent no-ops, and a tick racing a user payment simply loses the
// versioned write and re-evaluates.
type DeadlineScanner struct {
	requests *requeststore.Store
	runner   *lifecycle.Runner
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewDeadlineScanner creates a scanner that ticks at the given interval.
func NewDeadlineScanner(requests *requeststore.Store, runner *lifecycle.Runner, logger *zap.Logger, interval time.Duration) *DeadlineScanner {
	return &DeadlineScanner{
		requests: requests,
		runner:   runner,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background scan loop.
func (w *DeadlineScanner) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("deadline scanner started", zap.Duration("interval", w.interval))
}

// Stop signals the scanner to stop and waits for it to finish.
func (w *DeadlineScanner) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("deadline scanner stopped")
}

func (w *DeadlineScanner) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *DeadlineScanner) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	now := time.Now().UTC()

	due, err := w.requests.ListDuePaymentDeadlines(ctx, now)
	if err != nil {
		w.log.Error("scan payment deadlines failed", zap.Error(err))
	} else {
		w.submitAll(ctx, due, lifecycle.DeadlineExpired{})
	}

	linkDue, err := w.requests.ListConferenceLinkDue(ctx, now, lifecycle.ConferenceLinkWindow)
	if err != nil {
		w.log.Error("scan conference links failed", zap.Error(err))
	} else {
		w.submitAll(ctx, linkDue, lifecycle.IssueConferenceLink{})
	}

	starts, err := w.requests.ListDueSessionStarts(ctx, now)
	if err != nil {
		w.log.Error("scan session starts failed", zap.Error(err))
	} else {
		w.submitAll(ctx, starts, lifecycle.AdvanceToInProgress{})
	}
}

func (w *DeadlineScanner) submitAll(ctx context.Context, due []models.GroupRequest, ev lifecycle.Event) {
	for _, req := range due {
		if _, err := w.runner.Submit(ctx, req.ID, lifecycle.SystemActor, ev); err != nil {
			// Conflicts here mean a user write won the race; the next
			// tick re-evaluates against the fresh state.
			w.log.Warn("scheduler event not applied",
				zap.String("request_id", req.ID.Hex()),
				zap.String("event", ev.Kind()),
				zap.Error(err))
			continue
		}
		w.log.Info("scheduler event applied",
			zap.String("request_id", req.ID.Hex()),
			zap.String("event", ev.Kind()))
	}
}
