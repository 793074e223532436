package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPricingSettingsDefault(t *testing.T) {
	svc := NewSettingsService(newFakeSettingRepo(), 10)

	pricing, err := svc.GetPricingSettings()
	require.NoError(t, err)
	assert.Equal(t, 10.0, pricing.CommissionRatePct)
}

func TestUpdatePricingSettings(t *testing.T) {
	svc := NewSettingsService(newFakeSettingRepo(), 10)

	updated, err := svc.UpdatePricingSettings(UpdatePricingRequest{CommissionRatePct: 12.5})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.CommissionRatePct)

	pricing, err := svc.GetPricingSettings()
	require.NoError(t, err)
	assert.Equal(t, 12.5, pricing.CommissionRatePct)

	_, err = svc.UpdatePricingSettings(UpdatePricingRequest{CommissionRatePct: 101})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdatePricingSettings(UpdatePricingRequest{CommissionRatePct: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

// Rate changes apply only to deliveries completed after the change; already
// settled orders keep their frozen split.
func TestCommissionRateChangeIsProspective(t *testing.T) {
	f := newOrderServiceFixture()

	first := f.acceptedOrder(1000)
	first, err := f.svc.AdvanceOrder(rider, first.ID, AdvanceOrderRequest{Action: ActionDeliver})
	require.NoError(t, err)
	require.NotNil(t, first.Financial)
	assert.Equal(t, 100.0, first.Financial.CommissionAmount)

	_, err = f.settings.UpdatePricingSettings(UpdatePricingRequest{CommissionRatePct: 20})
	require.NoError(t, err)

	second := f.acceptedOrder(1000)
	second, err = f.svc.AdvanceOrder(rider, second.ID, AdvanceOrderRequest{Action: ActionDeliver})
	require.NoError(t, err)
	assert.Equal(t, 20.0, second.Financial.CommissionRatePct)
	assert.Equal(t, 200.0, second.Financial.CommissionAmount)

	// The earlier order is untouched.
	refetched, err := f.svc.GetOrderByID(admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, refetched.Financial.CommissionAmount)
}
