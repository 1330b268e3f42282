package employee

import (
	"fmt"

	"github.com/okian/churnboard/pkg/errkind"
)

// Normalize converts raw rows into records with ordinal salary tiers.
// The input slice is left untouched. The first row whose salary is not one of
// low/medium/high aborts the whole conversion with ErrValidation.
func Normalize(raw []RawRecord) ([]Record, error) {
	const op = "employee.normalize"
	out := make([]Record, len(raw))
	for i, r := range raw {
		tier, err := ParseSalaryTier(r.Salary)
		if err != nil {
			return nil, errkind.WrapKind(op, errkind.ErrValidation, fmt.Errorf("row %d: %w", i+1, err))
		}
		out[i] = Record{
			SatisfactionLevel:   r.SatisfactionLevel,
			LastEvaluation:      r.LastEvaluation,
			NumberProject:       r.NumberProject,
			AverageMonthlyHours: r.AverageMonthlyHours,
			TimeSpendCompany:    r.TimeSpendCompany,
			WorkAccident:        r.WorkAccident,
			PromotionLast5Years: r.PromotionLast5Years,
			Salary:              tier,
			Left:                r.Left,
		}
	}
	return out, nil
}
