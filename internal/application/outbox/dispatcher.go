package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
	"github.com/openretail/pos-backend/pkg/logger"
)

// FiscalSubmitter delivers the fiscal submission intent for a committed sale.
// An authority rejection the submitter has durably recorded must return nil;
// the error path is for infrastructure failures worth redelivering.
type FiscalSubmitter interface {
	Deliver(ctx context.Context, saleID string) error
}

// Printer triggers a receipt print for a committed sale. Rendering is an
// external concern; failures are logged only.
type Printer interface {
	PrintReceipt(ctx context.Context, saleID string) error
}

// Dispatcher drains the outbox: intents written in the sale transaction are
// delivered at-least-once to the fiscal submitter and the printer, across
// process restarts. It is the only consumer of pending entries.
type Dispatcher struct {
	outbox       repository.OutboxRepository
	fiscal       FiscalSubmitter
	printer      Printer
	log          *logger.Logger
	pollInterval time.Duration
	maxAttempts  int
	batchSize    int
	wake         chan struct{}
}

// NewDispatcher builds the worker. maxAttempts bounds delivery attempts per
// entry before it is parked as failed.
func NewDispatcher(
	outboxRepo repository.OutboxRepository,
	fiscal FiscalSubmitter,
	printer Printer,
	log *logger.Logger,
	pollInterval time.Duration,
	maxAttempts int,
) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Dispatcher{
		outbox:       outboxRepo,
		fiscal:       fiscal,
		printer:      printer,
		log:          log,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		batchSize:    20,
		wake:         make(chan struct{}, 1),
	}
}

// Wake nudges the dispatcher after a commit so fresh intents are picked up
// without waiting a full poll interval. Never blocks.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run drains pending entries until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.wake:
		case <-ticker.C:
		}
		if err := d.processBatch(ctx); err != nil && ctx.Err() == nil {
			d.log.Error().Err(err).Msg("outbox batch")
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	entries, err := d.outbox.ListPending(ctx, d.batchSize)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.dispatch(ctx, entry); err != nil {
			d.log.Warn().Err(err).
				Str("outbox_id", entry.ID).
				Str("sale_id", entry.SaleID).
				Str("kind", entry.Kind).
				Int("attempts", entry.Attempts+1).
				Msg("outbox dispatch failed")
			if markErr := d.outbox.MarkFailed(ctx, entry.ID, err.Error(), d.maxAttempts); markErr != nil {
				return markErr
			}
			continue
		}
		if err := d.outbox.MarkDone(ctx, entry.ID); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, entry *entity.OutboxEntry) error {
	switch entry.Kind {
	case entity.OutboxKindFiscalSubmit:
		return d.fiscal.Deliver(ctx, entry.SaleID)
	case entity.OutboxKindPrintReceipt:
		return d.printer.PrintReceipt(ctx, entry.SaleID)
	default:
		return fmt.Errorf("unknown outbox kind %q", entry.Kind)
	}
}
