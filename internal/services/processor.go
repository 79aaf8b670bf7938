package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kassa/internal/config"
	"kassa/internal/core"
)

// ProcessorConfig holds tuning for the due-item processor.
type ProcessorConfig struct {
	// ScanInterval is how often the queue is scanned for due items.
	ScanInterval time.Duration

	// TriggerWarnCount flags absurd unit multipliers ("999 габ") as a
	// data-quality warning. The amount is still accumulated.
	TriggerWarnCount int
}

// DefaultProcessorConfig returns the deployed defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		ScanInterval:     30 * time.Second,
		TriggerWarnCount: 100,
	}
}

// DueProcessor periodically sweeps the pending queue: each due item is
// claimed, parsed, accumulated into the ledger, logged, and announced to the
// administrator. Scans never overlap: the loop runs each batch to completion
// before waiting for the next tick.
type DueProcessor struct {
	queue     PendingQueue
	ledger    Ledger
	log       ActivityLog
	notifier  Notifier
	mirror    EntryMirror    // optional
	publisher EventPublisher // optional
	table     *core.TriggerTable
	chats     map[int64]config.TrackedChat
	loc       *time.Location
	config    ProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	now func() time.Time
}

func NewDueProcessor(
	queue PendingQueue,
	ledger Ledger,
	activityLog ActivityLog,
	notifier Notifier,
	mirror EntryMirror,
	publisher EventPublisher,
	table *core.TriggerTable,
	chats map[int64]config.TrackedChat,
	loc *time.Location,
	cfg ProcessorConfig,
) *DueProcessor {
	return &DueProcessor{
		queue:     queue,
		ledger:    ledger,
		log:       activityLog,
		notifier:  notifier,
		mirror:    mirror,
		publisher: publisher,
		table:     table,
		chats:     chats,
		loc:       loc,
		config:    cfg,
		now:       time.Now,
	}
}

// Start begins the scan loop. Returns an error if already running.
func (p *DueProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("due processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Due processor started",
		"scan_interval", p.config.ScanInterval)
	return nil
}

// Stop gracefully stops the processor and waits for the loop to exit.
func (p *DueProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Due processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Due processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// IsRunning reports whether the scan loop is active.
func (p *DueProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *DueProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.ScanInterval)
	defer ticker.Stop()

	// Process immediately on startup to drain anything that came due while
	// the process was down.
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch runs one due-scan. Storage unavailability aborts the cycle;
// the next tick retries. Per-item failures never abort the rest of the batch.
func (p *DueProcessor) ProcessBatch(ctx context.Context) {
	items, err := p.queue.DuePending(ctx, p.now().UTC())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch due messages", "error", err)
		return
	}
	if len(items) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing due messages", "count", len(items))

	for _, item := range items {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}
		p.processItem(ctx, item)
	}
}

// processItem handles one due message. The claim happens before any side
// effect: if this scan loses the claim the item is skipped entirely, so the
// ledger is mutated exactly once per message. After a successful claim the
// item is never retried, whatever happens downstream. The system favors
// forward progress over re-processing.
func (p *DueProcessor) processItem(ctx context.Context, item core.PendingMessage) {
	claimed, err := p.queue.ClaimPending(ctx, item.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to claim pending message",
			"pending_id", item.ID, "error", err)
		return
	}
	if !claimed {
		slog.DebugContext(ctx, "Pending message already claimed", "pending_id", item.ID)
		return
	}

	m, ok := p.table.Parse(item.Text)
	if !ok {
		// Passed intake's loose '+' filter but matches no trigger.
		slog.InfoContext(ctx, "No valid trigger in pending message",
			"pending_id", item.ID, "chat_id", item.ChatID)
		return
	}
	if m.Count > p.config.TriggerWarnCount {
		slog.WarnContext(ctx, "Implausibly large unit multiplier",
			"pending_id", item.ID,
			"count", m.Count,
			"amount_cents", m.Amount.Cents)
	}

	newTotal, err := p.ledger.AddToLedger(ctx, m.Amount.Cents)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to update ledger",
			"pending_id", item.ID, "amount_cents", m.Amount.Cents, "error", err)
		return
	}

	chatTitle := "Unknown"
	if chat, ok := p.chats[item.ChatID]; ok {
		chatTitle = chat.Title
	}
	entry := core.Entry{
		Amount:     m.Amount,
		Label:      m.Label,
		ChatTitle:  chatTitle,
		ChatID:     item.ChatID,
		OccurredAt: p.now().UTC(),
	}
	if err := p.log.AppendEntry(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "Failed to append activity entry",
			"pending_id", item.ID, "error", err)
		// The ledger update is already committed; keep going.
	}

	if p.mirror != nil {
		if err := p.mirror.AppendEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror activity entry",
				"pending_id", item.ID, "error", err)
		}
	}
	if p.publisher != nil {
		if err := p.publisher.PublishEntry(ctx, entry, newTotal); err != nil {
			slog.ErrorContext(ctx, "Failed to publish entry event",
				"pending_id", item.ID, "error", err)
		}
	}

	text := fmt.Sprintf("%s BYN\nS = %s BYN\n\n%s\n%s",
		m.Amount.Format(),
		core.Money{Cents: newTotal}.Format(),
		chatTitle,
		core.FormatStamp(item.CreatedAt, p.loc))
	if err := p.notifier.Send(ctx, text); err != nil {
		// Not retried: the ledger update and log entry are already durable.
		slog.ErrorContext(ctx, "Failed to notify administrator",
			"pending_id", item.ID, "error", err)
		return
	}

	slog.InfoContext(ctx, "Processed pending message",
		"pending_id", item.ID,
		"trigger", m.Label,
		"amount_cents", m.Amount.Cents,
		"total_cents", newTotal,
		"chat_title", chatTitle)
}
