package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// BearerKey is the app_settings key holding the active Smartlead token.
const BearerKey = "smartlead_bearer"

// SettingsRepository stores operator-managed settings in app_settings
// with upsert-by-key semantics.
type SettingsRepository interface {
	// GetBearer returns the stored token, or "" when none is set.
	GetBearer(ctx context.Context) (string, error)
	SetBearer(ctx context.Context, token string) error
	ClearBearer(ctx context.Context) error
}

type SettingsRepositoryImpl struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepositoryImpl {
	return &SettingsRepositoryImpl{db: db}
}

var _ SettingsRepository = (*SettingsRepositoryImpl)(nil)

func (r *SettingsRepositoryImpl) GetBearer(ctx context.Context) (string, error) {
	var value string
	query := r.db.Rebind(`SELECT value FROM app_settings WHERE key = ?`)
	err := r.db.GetContext(ctx, &value, query, BearerKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SettingsRepositoryImpl) SetBearer(ctx context.Context, token string) error {
	query := r.db.Rebind(`
		INSERT INTO app_settings (key, value, updated_at)
		VALUES (?, ?, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`)
	_, err := r.db.ExecContext(ctx, query, BearerKey, token)
	return err
}

func (r *SettingsRepositoryImpl) ClearBearer(ctx context.Context) error {
	query := r.db.Rebind(`DELETE FROM app_settings WHERE key = ?`)
	_, err := r.db.ExecContext(ctx, query, BearerKey)
	return err
}
