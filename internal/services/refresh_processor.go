package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fondo/internal/amqp"
	"fondo/internal/metrics"
	"fondo/internal/snapshot"
	"fondo/internal/storage"
)

// RefreshProcessorConfig holds configuration for the refresh processor.
type RefreshProcessorConfig struct {
	// Debounce is the minimum gap between snapshot reloads; change
	// bursts inside the window collapse into one reload (default: 2s).
	Debounce time.Duration

	// ResyncInterval forces a reload even without change messages, as
	// a safety net against missed announcements (default: 10m).
	ResyncInterval time.Duration
}

// DefaultRefreshProcessorConfig returns sensible defaults.
func DefaultRefreshProcessorConfig() RefreshProcessorConfig {
	return RefreshProcessorConfig{
		Debounce:       2 * time.Second,
		ResyncInterval: 10 * time.Minute,
	}
}

// RefreshProcessor keeps the served snapshot in step with the record
// store: it consumes record-change announcements and reloads the
// snapshot, debounced so message bursts cost one reload.
type RefreshProcessor struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	store      *snapshot.Store
	config     RefreshProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	dirty chan struct{}
}

// NewRefreshProcessor creates a new refresh processor. The AMQP client
// may be nil; the processor then falls back to periodic resync only.
func NewRefreshProcessor(
	storage *storage.SQLiteRepository,
	amqpClient *amqp.Client,
	store *snapshot.Store,
	config RefreshProcessorConfig,
) *RefreshProcessor {
	return &RefreshProcessor{
		storage:    storage,
		amqpClient: amqpClient,
		store:      store,
		config:     config,
		dirty:      make(chan struct{}, 1),
	}
}

// Start begins consuming and reloading. Returns an error if already running.
func (p *RefreshProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("refresh processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	// Serve something immediately rather than an empty snapshot.
	p.reload(ctx)

	go p.runLoop(ctx)

	if p.amqpClient != nil {
		go p.consume(ctx)
	} else {
		slog.WarnContext(ctx, "No AMQP client, snapshot refresh limited to periodic resync")
	}

	slog.InfoContext(ctx, "Refresh processor started",
		"debounce", p.config.Debounce,
		"resync_interval", p.config.ResyncInterval)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *RefreshProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Refresh processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresh processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running.
func (p *RefreshProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *RefreshProcessor) consume(ctx context.Context) {
	err := p.amqpClient.ConsumeRecordChanges(ctx, func(msg *amqp.RecordChangeMessage) error {
		metrics.RecordChanges.WithLabelValues(msg.Collection, msg.Op).Inc()
		p.markDirty()
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Record-change consumer exited", "error", err)
	}
}

func (p *RefreshProcessor) markDirty() {
	select {
	case p.dirty <- struct{}{}:
	default: // a reload is already pending
	}
}

func (p *RefreshProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	resync := time.NewTicker(p.config.ResyncInterval)
	defer resync.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-p.dirty:
			// Let the burst finish before paying for a reload.
			select {
			case <-time.After(p.config.Debounce):
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
			p.reload(ctx)
		case <-resync.C:
			p.reload(ctx)
		}
	}
}

func (p *RefreshProcessor) reload(ctx context.Context) {
	snap, err := p.storage.LoadSnapshot(ctx)
	if err != nil {
		metrics.SnapshotRefreshes.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "Failed to load snapshot", "error", err)
		return
	}
	version := p.store.Replace(snap)
	metrics.SnapshotRefreshes.WithLabelValues("ok").Inc()
	metrics.SnapshotVersion.Set(float64(version))

	slog.DebugContext(ctx, "Snapshot reloaded",
		"version", version,
		"transactions", len(snap.Transactions),
		"users", len(snap.Users))
}
