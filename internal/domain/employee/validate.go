package employee

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/churnboard/pkg/errkind"
)

// Form bounds, matching the dashboard inputs.
const (
	MinProjects = 1
	MaxProjects = 10
	MinHours    = 0
	MaxHours    = 300
	MinYears    = 1
	MaxYears    = 10
)

// Validate checks in against the form's own ranges. The encoder does not
// repeat these checks; it only guards the salary vocabulary.
func (in Input) Validate() error {
	var errs []error
	checkFloat := func(name string, v, lo, hi float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			errs = append(errs, fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfRange, name, v, lo, hi))
		}
	}
	checkInt := func(name string, v, lo, hi int) {
		if v < lo || v > hi {
			errs = append(errs, fmt.Errorf("%w: %s=%d not in [%d, %d]", ErrOutOfRange, name, v, lo, hi))
		}
	}

	checkFloat("satisfaction_level", in.SatisfactionLevel, 0, 1)
	checkFloat("last_evaluation", in.LastEvaluation, 0, 1)
	checkInt("number_project", in.NumberProject, MinProjects, MaxProjects)
	checkInt("average_monthly_hours", in.AverageMonthlyHours, MinHours, MaxHours)
	checkInt("time_spend_company", in.TimeSpendCompany, MinYears, MaxYears)
	checkInt("work_accident", in.WorkAccident, 0, 1)
	checkInt("promotion_last_5years", in.PromotionLast5Years, 0, 1)
	if _, err := ParseSalaryTier(in.Salary); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return errkind.WrapKind("employee.validate", errkind.ErrValidation, errors.Join(errs...))
}
