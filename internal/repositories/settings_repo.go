package repositories

import (
	"context"
	"errors"

	"conexx/internal/models"

	"github.com/jackc/pgx/v5"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (*models.PlatformSetting, error)
	Set(ctx context.Context, key, value string) error
}

type settingsRepo struct {
	db DB
}

func NewSettingsRepository(db DB) SettingsRepository {
	return &settingsRepo{db: db}
}

// Get returns (nil, nil) when the key has never been configured.
func (r *settingsRepo) Get(ctx context.Context, key string) (*models.PlatformSetting, error) {
	query := `SELECT key, value, updated_at FROM platform_settings WHERE key = $1`
	setting := &models.PlatformSetting{}
	err := r.db.QueryRow(ctx, query, key).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (r *settingsRepo) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO platform_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, key, value)
	return err
}
