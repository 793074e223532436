package services

import (
	"errors"
	"fmt"
	"strconv"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"
)

// SettingKeyCommissionRate is the application_settings key holding the
// platform commission percentage applied at delivery time.
const SettingKeyCommissionRate = "commission_rate_pct"

var ErrInvalidSettingValue = errors.New("invalid setting value")

// --- SettingsService Interface ---

// SettingsService exposes the admin-editable pricing configuration. The
// commission rate is read at the moment of financial computation; it is never
// baked into a constant.
type SettingsService interface {
	GetPricingSettings() (*models.PricingSettings, error)
	UpdatePricingSettings(req UpdatePricingRequest) (*models.PricingSettings, error)
}

// UpdatePricingRequest is used by admins to change the commission rate.
type UpdatePricingRequest struct {
	CommissionRatePct float64 `json:"commission_rate_pct" binding:"required,gte=0,lte=100"`
}

// --- settingsService Implementation ---

type settingsService struct {
	settingRepo           repositories.SettingRepository
	defaultCommissionRate float64
}

// NewSettingsService creates a new instance of SettingsService. The default
// commission rate applies until an admin stores an explicit one.
func NewSettingsService(settingRepo repositories.SettingRepository, defaultCommissionRate float64) SettingsService {
	return &settingsService{
		settingRepo:           settingRepo,
		defaultCommissionRate: defaultCommissionRate,
	}
}

func (s *settingsService) GetPricingSettings() (*models.PricingSettings, error) {
	setting, err := s.settingRepo.GetSettingByKey(SettingKeyCommissionRate)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.PricingSettings{CommissionRatePct: s.defaultCommissionRate}, nil
		}
		return nil, fmt.Errorf("failed to load commission rate setting: %w", err)
	}
	rate, err := strconv.ParseFloat(setting.SettingValue, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidSettingValue, setting.SettingValue)
	}
	return &models.PricingSettings{CommissionRatePct: rate}, nil
}

func (s *settingsService) UpdatePricingSettings(req UpdatePricingRequest) (*models.PricingSettings, error) {
	if req.CommissionRatePct < 0 || req.CommissionRatePct > 100 {
		return nil, fmt.Errorf("%w: commission rate must be between 0 and 100", ErrValidation)
	}
	value := strconv.FormatFloat(req.CommissionRatePct, 'f', -1, 64)
	description := "Platform commission percentage applied to orders at delivery time"
	if _, err := s.settingRepo.UpsertSetting(SettingKeyCommissionRate, value, &description); err != nil {
		return nil, fmt.Errorf("failed to store commission rate: %w", err)
	}
	return &models.PricingSettings{CommissionRatePct: req.CommissionRatePct}, nil
}
