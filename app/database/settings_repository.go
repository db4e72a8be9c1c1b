package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Names of the settings an operator can store through the control panel.
const (
	SettingRewriterKeys        = "rewriter_api_keys"
	SettingFacebookPageID      = "facebook_page_id"
	SettingFacebookAccessToken = "facebook_access_token"
	SettingTelegramBotToken    = "telegram_bot_token"
	SettingTelegramChatID      = "telegram_chat_id"
)

var KnownSettings = []string{
	SettingRewriterKeys,
	SettingFacebookPageID,
	SettingFacebookAccessToken,
	SettingTelegramBotToken,
	SettingTelegramChatID,
}

func IsKnownSetting(name string) bool {
	return slices.Contains(KnownSettings, name)
}

type settingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, name string) (string, bool, error) {
	query := r.db.builder.Select("value").From("settings").Where(sq.Eq{"name": name})

	row, err := r.db.queryRow(ctx, query)
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", name, err)
	}

	var value string
	err = row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", name, err)
	}

	return value, true, nil
}

func (r *settingsRepository) GetAll(ctx context.Context) ([]Setting, error) {
	query := r.db.builder.Select("name", "value", "updated_at").From("settings").OrderBy("name")

	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Name, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return settings, nil
}

func (r *settingsRepository) Set(ctx context.Context, name, value string) error {
	query := r.db.builder.
		Insert("settings").
		Columns("name", "value", "updated_at").
		Values(name, value, time.Now().UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at")

	if _, err := r.db.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}

	return nil
}

func (r *settingsRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.exec(ctx, r.db.builder.Delete("settings").Where(sq.Eq{"name": name})); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", name, err)
	}

	return nil
}
