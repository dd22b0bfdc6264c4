package numbering_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/pos-backend/internal/application/numbering"
	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/infrastructure/memory"
)

func newIssuer(prefix, start string) *numbering.Issuer {
	store := memory.NewStore()
	provider := settings.Static{S: settings.Settings{
		settings.KeyInvoicePrefix: prefix,
		settings.KeyInvoiceStart:  start,
	}}
	return numbering.NewIssuer(store.Counters(), provider)
}

func TestIssuerFormatAndSequence(t *testing.T) {
	ctx := context.Background()
	issuer := newIssuer("INV-", "1000")

	first, err := issuer.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-001000", first)

	second, err := issuer.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-001001", second)
}

func TestIssuerDefaults(t *testing.T) {
	ctx := context.Background()
	issuer := newIssuer("", "")

	n, err := issuer.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-001000", n)
}

func TestIssuerCustomPrefix(t *testing.T) {
	ctx := context.Background()
	issuer := newIssuer("TICKET/", "1")

	n, err := issuer.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TICKET/000001", n)
}

// Concurrent callers must never receive the same number.
func TestIssuerConcurrentUniqueness(t *testing.T) {
	ctx := context.Background()
	issuer := newIssuer("INV-", "1000")

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := issuer.Next(ctx)
			assert.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, workers)
	for n := range results {
		assert.False(t, seen[n], "duplicate invoice number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}

func TestFallbackFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-1748779200000", numbering.Fallback(now))
}
