package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ninthwaka_backend/internal/models"
)

// SettingRepository defines the interface for application settings persistence.
type SettingRepository interface {
	GetSettingByKey(key string) (*models.ApplicationSetting, error)
	UpsertSetting(key, value string, description *string) (*models.ApplicationSetting, error)
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetSettingByKey(key string) (*models.ApplicationSetting, error) {
	s := &models.ApplicationSetting{}
	var description sql.NullString
	query := `SELECT id, setting_key, setting_value, description, created_at, updated_at
	          FROM application_settings WHERE setting_key = $1`
	err := r.db.QueryRow(query, key).Scan(
		&s.ID, &s.SettingKey, &s.SettingValue, &description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting setting %q: %v", ErrDatabaseError, key, err)
	}
	if description.Valid {
		s.Description = &description.String
	}
	return s, nil
}

func (r *settingRepository) UpsertSetting(key, value string, description *string) (*models.ApplicationSetting, error) {
	s := &models.ApplicationSetting{}
	var desc sql.NullString
	now := time.Now()
	query := `INSERT INTO application_settings (setting_key, setting_value, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $4)
	          ON CONFLICT (setting_key)
	          DO UPDATE SET setting_value = EXCLUDED.setting_value,
	                        description = COALESCE(EXCLUDED.description, application_settings.description),
	                        updated_at = EXCLUDED.updated_at
	          RETURNING id, setting_key, setting_value, description, created_at, updated_at`
	err := r.db.QueryRow(query, key, value, description, now).Scan(
		&s.ID, &s.SettingKey, &s.SettingValue, &desc, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: upserting setting %q: %v", ErrDatabaseError, key, err)
	}
	if desc.Valid {
		s.Description = &desc.String
	}
	return s, nil
}
