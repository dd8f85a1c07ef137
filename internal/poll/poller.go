// Package poll owns the mailbox poll loop: it gates, decodes, extracts,
// prices, and hands completed task records to the generation and
// notification collaborators.
package poll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vrudakov/taskwatch/internal/dedup"
	"github.com/vrudakov/taskwatch/internal/extract"
	"github.com/vrudakov/taskwatch/internal/mailbox"
	"github.com/vrudakov/taskwatch/internal/model"
	"github.com/vrudakov/taskwatch/internal/pricing"
)

// MessageSource lists unseen marketplace messages, fetched in full.
type MessageSource interface {
	Unseen(ctx context.Context) ([]mailbox.Message, error)
}

// Generator drafts the proposal text for an extracted task.
type Generator interface {
	GenerateProposal(
		ctx context.Context,
		task model.Task,
		priceSection string,
	) (string, error)
}

// Notifier delivers the finished proposal to the operator.
type Notifier interface {
	SendOffer(ctx context.Context, task model.Task, proposal string) error
}

// digestMarkers identify aggregation emails announcing several tasks at
// once; those carry no single task to extract.
var digestMarkers = []string{"подборка", "рекомендуем"}

// collaboratorTimeout bounds each generation and notification call.
const collaboratorTimeout = 30 * time.Second

// Options bundles the poll loop tunables.
type Options struct {
	// Interval is the fixed inter-cycle sleep.
	Interval time.Duration

	// Staleness is the maximum message age still worth processing.
	Staleness time.Duration

	// MinBudget is the smallest stated budget worth responding to.
	MinBudget int
}

// Poller runs the connect/search/fetch cycle and pipes each fetched
// message through the extraction pipeline. It is single-threaded: one
// cycle runs at a time, and collaborator calls complete before the next
// message is touched.
type Poller struct {
	source   MessageSource
	gen      Generator
	notifier Notifier
	seen     *dedup.Registry
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Poller. Zero option values fall back to the defaults
// (10s interval, 10m staleness window, minimum budget 500).
func New(
	source MessageSource,
	gen Generator,
	notifier Notifier,
	seen *dedup.Registry,
	opts Options,
	log *slog.Logger,
) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Staleness <= 0 {
		opts.Staleness = 10 * time.Minute
	}
	if opts.MinBudget <= 0 {
		opts.MinBudget = 500
	}
	if log == nil {
		log = slog.Default()
	}

	return &Poller{
		source:   source,
		gen:      gen,
		notifier: notifier,
		seen:     seen,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Run polls until ctx is cancelled. A failed cycle is logged and retried
// at the same cadence as a successful one; nothing short of cancellation
// stops the loop.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.log.Info("poller started",
		"interval", p.opts.Interval,
		"staleness_window", p.opts.Staleness,
		"min_budget", p.opts.MinBudget,
	)

	for {
		if err := p.RunOnce(ctx); err != nil {
			p.log.Error("poll cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single poll cycle: fetch unseen messages and handle
// each new one. Connection and search failures abort the cycle; anything
// after that affects only the message it happened on.
func (p *Poller) RunOnce(ctx context.Context) error {
	msgs, err := p.source.Unseen(ctx)
	if err != nil {
		return fmt.Errorf("fetching unseen messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil
	}

	sent := 0
	for _, msg := range msgs {
		// Insert-if-absent gates the whole pipeline: whatever happens
		// to the message afterwards, it is never picked up again.
		if !p.seen.MarkIfNew(msg.UID) {
			continue
		}
		if p.handle(ctx, msg) {
			sent++
		}
	}

	if sent > 0 {
		p.log.Info("cycle complete", "offers_sent", sent)
	}
	return nil
}

// handle runs one message through staleness and content gates, the
// decoder, the extractor, pricing, generation, and notification. Every
// return is terminal for the message; it reports whether a notification
// went out.
func (p *Poller) handle(ctx context.Context, msg mailbox.Message) bool {
	log := p.log.With("uid", msg.UID, "processing_id", uuid.NewString())

	if msg.Date.Before(p.now().Add(-p.opts.Staleness)) {
		log.Debug("skipping stale message", "date", msg.Date)
		return false
	}

	if isDigest(msg.Subject) {
		log.Debug("skipping digest message", "subject", msg.Subject)
		return false
	}

	body := mailbox.ExtractText(msg.Raw)
	if body == "" {
		log.Warn("no usable text in message body")
	}

	task := extract.Task(body, msg.Subject)
	task.UID = msg.UID
	task.Date = msg.Date

	if task.Budget == nil {
		log.Debug("skipping task without budget", "title", task.Title)
		return false
	}
	if *task.Budget < p.opts.MinBudget {
		log.Debug("skipping low-budget task",
			"title", task.Title, "budget", *task.Budget)
		return false
	}

	priceSection := ""
	if extract.WantsPriceInReply(task.Subject, task.FullText) {
		priceSection = fmt.Sprintf(
			"Стоимость работы: %d ₽. ", pricing.Offer(*task.Budget),
		)
	}

	proposal, err := p.generate(ctx, task, priceSection)
	if err != nil {
		log.Error("proposal generation failed", "error", err)
		return false
	}

	if err := p.send(ctx, task, proposal); err != nil {
		// The message is already marked processed; delivery failures
		// are logged and never retried.
		log.Error("notification failed", "error", err)
		return false
	}

	log.Info("offer sent", "title", task.Title, "budget", *task.Budget)
	return true
}

func (p *Poller) generate(
	ctx context.Context,
	task model.Task,
	priceSection string,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
	defer cancel()
	return p.gen.GenerateProposal(ctx, task, priceSection)
}

func (p *Poller) send(
	ctx context.Context,
	task model.Task,
	proposal string,
) error {
	ctx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
	defer cancel()
	return p.notifier.SendOffer(ctx, task, proposal)
}

// isDigest reports whether the subject marks a multi-task digest.
func isDigest(subject string) bool {
	lower := strings.ToLower(subject)
	for _, marker := range digestMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
