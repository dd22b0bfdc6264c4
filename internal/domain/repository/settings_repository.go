package repository

import "context"

// SettingsRepository backs the key-value settings store (tax rate, invoice
// prefix/start, fiscal_* flags, business data).
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}
