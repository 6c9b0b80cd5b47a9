package services

import (
	"math"

	"relocation/internal/core/domain/model/driver"
)

const (
	// FreelanceBracketKm is the width of one freelance fee bracket.
	FreelanceBracketKm = 100.0

	// ContractedPeriodBase is the fee paid to a contracted driver for a trip of
	// exactly ContractedThresholdKm; shorter trips are prorated linearly.
	ContractedPeriodBase = 2500.0
	// ContractedThresholdKm is the distance covered by the period base.
	ContractedThresholdKm = 3000.0
	// ContractedExtraPerKm is paid for every kilometre beyond the threshold.
	ContractedExtraPerKm = 0.25
)

// freelanceFees maps the brackets 0-99, 100-199, ..., 1900-1999 km to flat fees.
var freelanceFees = [...]float64{
	50, 70, 85, 100, 115, 130, 145, 160, 175, 190,
	205, 220, 235, 250, 262, 274, 286, 298, 310, 320,
}

// CompensationCalculator computes the fee a driver earns for a job. It is pure and
// safe for concurrent use.
type CompensationCalculator struct{}

func NewCompensationCalculator() CompensationCalculator {
	return CompensationCalculator{}
}

// Compute returns the driver fee for a trip of distanceKm, rounded to cents, or nil
// when no fee can be determined: a non-positive or non-finite distance, or an
// unknown employment type. It never fails the caller.
//
// FREELANCE distances beyond the last bracket are paid the last bracket's fee. This
// ceiling is kept as the business defined it and is not extrapolated.
func (CompensationCalculator) Compute(distanceKm float64, employmentType driver.EmploymentType) *float64 {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm <= 0 {
		return nil
	}

	var fee float64
	switch employmentType {
	case driver.Freelance:
		bracket := min(int(math.Floor(distanceKm/FreelanceBracketKm)), len(freelanceFees)-1)
		fee = freelanceFees[bracket]
	case driver.Contracted:
		base := ContractedPeriodBase * math.Min(distanceKm, ContractedThresholdKm) / ContractedThresholdKm
		extra := math.Max(distanceKm-ContractedThresholdKm, 0) * ContractedExtraPerKm
		fee = base + extra
	default:
		return nil
	}

	rounded := math.Round(fee*100) / 100
	return &rounded
}
