// Package archive moves terminal flows out of Redis into a blob bucket once
// they age past the configured maximum. Abandoned in-progress flows are not
// its concern; only completed and aborted instances are indexed for it.
package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hearthhub/configflow/internal/store"
	"github.com/hearthhub/configflow/pkg/api"
	"github.com/hearthhub/configflow/pkg/events"
	"github.com/hearthhub/configflow/pkg/log"
)

type (
	// Worker periodically archives aged terminal flows
	Worker struct {
		flows  *store.Store
		blobs  *BlobArchiver
		hub    *events.Hub
		config Config
		ctx    context.Context
		cancel context.CancelFunc
		wg     sync.WaitGroup
	}

	// Config bounds the worker's sweep
	Config struct {
		CheckInterval time.Duration
		MaxAge        time.Duration
		BatchSize     int
	}
)

const (
	DefaultCheckInterval = 5 * time.Minute
	DefaultMaxAge        = 24 * time.Hour
	DefaultBatchSize     = 100
)

// NewWorker creates an archiving worker over the flow store and bucket
func NewWorker(
	flows *store.Store, blobs *BlobArchiver, hub *events.Hub, cfg Config,
) *Worker {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		flows:  flows,
		blobs:  blobs,
		hub:    hub,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the archiving loop
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop shuts the worker down and waits for the current sweep to finish
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(w.ctx)
		}
	}
}

// Sweep archives one batch of aged terminal flows. Exposed so tests and
// shutdown paths can force a pass without waiting on the ticker
func (w *Worker) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.config.MaxAge)
	flowIDs, err := w.flows.TerminalFlowsBefore(
		ctx, cutoff, w.config.BatchSize,
	)
	if err != nil {
		slog.Warn("Failed to select flows for archiving", log.Error(err))
		return
	}

	for _, flowID := range flowIDs {
		if err := w.archiveFlow(ctx, flowID); err != nil {
			slog.Warn("Failed to archive flow",
				log.FlowID(flowID), log.Error(err))
		}
	}
}

func (w *Worker) archiveFlow(ctx context.Context, flowID api.FlowID) error {
	flow, err := w.flows.GetFlow(ctx, flowID)
	if err != nil {
		return err
	}

	if err := w.blobs.Put(ctx, flow); err != nil {
		return err
	}
	if err := w.flows.DeleteFlow(ctx, flowID); err != nil {
		return err
	}

	slog.Info("Flow archived",
		log.FlowID(flowID),
		log.Status(flow.Status))
	w.hub.Publish(events.NewFlowEvent(events.EventFlowArchived, flow))
	return nil
}
