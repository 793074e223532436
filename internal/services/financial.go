package services

import (
	"math"

	"ninthwaka_backend/internal/models"
)

// Round2 rounds to two decimal places (currency minor units), half away
// from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeFinancial splits a gross order price into platform commission and
// rider net. The commission rate is passed in explicitly so the function
// stays pure: the caller reads the rate at the moment of delivery, and later
// rate changes never retroactively alter settled orders.
func ComputeFinancial(grossAmount, commissionRatePct float64) models.Financial {
	commission := Round2(grossAmount * commissionRatePct / 100)
	return models.Financial{
		GrossAmount:       grossAmount,
		CommissionRatePct: commissionRatePct,
		CommissionAmount:  commission,
		RiderNetAmount:    Round2(grossAmount - commission),
	}
}
