package printer

import (
	"context"

	"github.com/openretail/pos-backend/internal/application/outbox"
	"github.com/openretail/pos-backend/pkg/logger"
)

var _ outbox.Printer = (*LogPrinter)(nil)

// LogPrinter acknowledges print intents in the log. Physical printing happens
// on the terminal; the backend only records that auto-print was requested.
type LogPrinter struct {
	log *logger.Logger
}

// NewLogPrinter builds the printer.
func NewLogPrinter(log *logger.Logger) *LogPrinter {
	return &LogPrinter{log: log}
}

// PrintReceipt logs the intent and succeeds.
func (p *LogPrinter) PrintReceipt(_ context.Context, saleID string) error {
	p.log.Info().Str("sale_id", saleID).Msg("receipt print requested")
	return nil
}
