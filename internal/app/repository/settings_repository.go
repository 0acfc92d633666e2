package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avelns/shortlinkd/internal/app/model"
)

// SettingsRepository defines the data access contract for the singleton
// notification settings row.
type SettingsRepository interface {
	// EnsureDefault inserts the default all-off settings row when the table
	// is empty. Called once at startup so later reads never need a fallback.
	EnsureDefault(ctx context.Context) error
	Get(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, settings *model.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository returns a GORM-backed SettingsRepository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) EnsureDefault(ctx context.Context) error {
	var existing model.Settings
	err := r.db.WithContext(ctx).First(&existing, model.SettingsID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(&model.Settings{ID: model.SettingsID}).Error
}

func (r *settingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	if err := r.db.WithContext(ctx).First(&settings, model.SettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	settings.ID = model.SettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
