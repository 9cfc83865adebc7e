// Package engine drives waiting processes forward. A single poller scans
// checkpoints parked on calc jobs and wakes the ones whose job is done.
package engine

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
	"provenance-workflow-service/internal/core/services"
)

type Poller struct {
	processSvc *services.ProcessService
	calcJobSvc *services.CalcJobService
	cpRepo     ports.CheckpointRepository
	interval   time.Duration
	batchSize  int
}

func NewPoller(processSvc *services.ProcessService, calcJobSvc *services.CalcJobService, cpRepo ports.CheckpointRepository, interval time.Duration, batchSize int) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Poller{
		processSvc: processSvc,
		calcJobSvc: calcJobSvc,
		cpRepo:     cpRepo,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// Run loops until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.WithField("interval", p.interval).Info("engine poller started")
	for {
		select {
		case <-ctx.Done():
			log.Info("engine poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one scan. Exported so a single pass can be tested and so the
// CLI can force a sweep.
func (p *Poller) Tick(ctx context.Context) {
	waiting, err := p.cpRepo.ListWaiting(ctx, p.batchSize)
	if err != nil {
		log.WithError(err).Error("list waiting processes")
		return
	}

	for _, cp := range waiting {
		if cp.WaitOn == nil {
			continue
		}
		ready, err := p.waitOnReady(ctx, cp.WaitOn)
		if err != nil {
			log.WithError(err).WithField("checkpoint_id", cp.ID).Warn("check wait-on")
			continue
		}
		if !ready {
			continue
		}
		if _, err := p.processSvc.MarkReady(ctx, cp.ID); err != nil {
			log.WithError(err).WithField("checkpoint_id", cp.ID).Error("mark process ready")
			continue
		}
		log.WithFields(log.Fields{
			"checkpoint_id": cp.ID,
			"process_label": cp.ProcessLabel,
			"callback":      cp.WaitOn.CallbackName,
		}).Info("process ready to resume")
	}
}

// waitOnReady refreshes the awaited job from the scheduler when possible
// and reports whether it has stopped running.
func (p *Poller) waitOnReady(ctx context.Context, waitOn *domain.WaitOn) (bool, error) {
	job, err := p.calcJobSvc.RefreshState(ctx, waitOn.CalcJobID)
	if err != nil {
		// Without a scheduler backend, fall back to the stored state.
		job, err = p.calcJobSvc.Get(ctx, waitOn.CalcJobID)
		if err != nil {
			return false, err
		}
	}
	return job.State.IsTerminal(), nil
}
