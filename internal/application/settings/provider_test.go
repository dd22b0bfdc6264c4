package settings_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/pos-backend/internal/application/settings"
	"github.com/openretail/pos-backend/internal/infrastructure/memory"
	"github.com/openretail/pos-backend/internal/infrastructure/rediscache"
)

func newProvider(t *testing.T) (*memory.Store, *settings.StoreProvider) {
	t.Helper()
	store := memory.NewStore()
	store.SetSetting(settings.KeyTaxRate, "19")
	store.SetSetting(settings.KeyInvoicePrefix, "INV-")
	return store, settings.NewStoreProvider(store.Settings(), rediscache.Noop{}, time.Minute)
}

func TestProviderLoadsOnFirstUse(t *testing.T) {
	ctx := context.Background()
	_, provider := newProvider(t)

	s, err := provider.Current(ctx)
	require.NoError(t, err)
	assert.True(t, s.TaxRate().Equal(decimal.NewFromInt(19)))
	assert.Equal(t, "INV-", s.InvoicePrefix())
}

// A write behind the provider's back is invisible until an explicit Reload.
func TestProviderSnapshotUntilReload(t *testing.T) {
	ctx := context.Background()
	store, provider := newProvider(t)

	_, err := provider.Current(ctx)
	require.NoError(t, err)

	store.SetSetting(settings.KeyTaxRate, "21")

	s, err := provider.Current(ctx)
	require.NoError(t, err)
	assert.True(t, s.TaxRate().Equal(decimal.NewFromInt(19)), "snapshot must not pick up external writes")

	s, err = provider.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, s.TaxRate().Equal(decimal.NewFromInt(21)))
}

func TestProviderSetWritesThroughAndReloads(t *testing.T) {
	ctx := context.Background()
	store, provider := newProvider(t)

	require.NoError(t, provider.Set(ctx, settings.KeyFiscalEnabled, "1"))

	s, err := provider.Current(ctx)
	require.NoError(t, err)
	assert.True(t, s.FiscalEnabled())

	raw, err := store.Settings().GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", raw[settings.KeyFiscalEnabled])
}

func TestSettingsDefaults(t *testing.T) {
	var s settings.Settings = map[string]string{}
	assert.False(t, s.FiscalEnabled())
	assert.Equal(t, 3, s.FiscalRetryAttempts())
	assert.Equal(t, "INV-", s.InvoicePrefix())
	assert.Equal(t, int64(1000), s.InvoiceStart())
	assert.True(t, s.TaxRate().IsZero())
	assert.False(t, s.AutoPrint())
}

func TestSettingsBadValuesFallBack(t *testing.T) {
	s := settings.Settings{
		settings.KeyFiscalRetryAttempts: "banana",
		settings.KeyInvoiceStart:        "-5",
		settings.KeyTaxRate:             "not-a-number",
	}
	assert.Equal(t, 3, s.FiscalRetryAttempts())
	assert.Equal(t, int64(1000), s.InvoiceStart())
	assert.True(t, s.TaxRate().IsZero())
}
