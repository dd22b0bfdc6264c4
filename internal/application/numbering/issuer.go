package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

// Issuer hands out unique, monotonically increasing invoice numbers formatted
// as {prefix}{zero-padded sequence}. Uniqueness under concurrent callers is
// guaranteed by the counter repository (one atomically incremented row per
// prefix), not by scanning existing numbers.
type Issuer struct {
	counters repository.CounterRepository
	settings settings.Provider
}

// NewIssuer builds the issuer.
func NewIssuer(counters repository.CounterRepository, settings settings.Provider) *Issuer {
	return &Issuer{counters: counters, settings: settings}
}

// Next issues the next invoice number using the configured prefix and start.
func (i *Issuer) Next(ctx context.Context) (string, error) {
	st, err := i.settings.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}
	prefix := st.InvoicePrefix()
	seq, err := i.counters.Next(ctx, prefix, st.InvoiceStart())
	if err != nil {
		return "", fmt.Errorf("next invoice sequence: %w", err)
	}
	return fmt.Sprintf("%s%06d", prefix, seq), nil
}

// Fallback builds a timestamp-derived placeholder number so checkout never
// hard-fails on numbering alone.
func Fallback(now time.Time) string {
	return fmt.Sprintf("INV-%d", now.UnixMilli())
}
