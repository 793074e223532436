package models

import "time"

// ApplicationSetting is a single admin-editable key/value configuration row.
type ApplicationSetting struct {
	ID           int64     `json:"id"`
	SettingKey   string    `json:"setting_key"`
	SettingValue string    `json:"setting_value"`
	Description  *string   `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PricingSettings is the admin-editable pricing configuration. The commission
// rate is read at the moment of financial computation and passed explicitly
// into the computation; changing it never retroactively alters settled orders.
type PricingSettings struct {
	CommissionRatePct float64 `json:"commission_rate_pct"`
}
