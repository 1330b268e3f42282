// Package employee holds the employee attribute types shared by the dataset,
// the encoder and the insight views.
package employee

import (
	"fmt"
	"strings"

	"github.com/okian/churnboard/pkg/errkind"
)

// SalaryTier is the ordinal salary band: Low=0, Medium=1, High=2.
type SalaryTier int

// Salary tiers in ordinal order.
const (
	Low SalaryTier = iota
	Medium
	High
)

// Tiers lists every valid tier in ordinal order.
var Tiers = []SalaryTier{Low, Medium, High}

func (t SalaryTier) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("SalaryTier(%d)", int(t))
	}
}

// ParseSalaryTier maps "low", "medium" or "high" (case and surrounding space
// ignored) to its tier. Anything else is ErrValidation.
func ParseSalaryTier(s string) (SalaryTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return 0, errkind.WrapKind("employee.parse_salary", errkind.ErrValidation,
		fmt.Errorf("%w: %q", ErrUnknownSalaryTier, s))
}

// Record is one normalized historical employee row. Records are never
// mutated after the table is built.
type Record struct {
	SatisfactionLevel   float64
	LastEvaluation      float64
	NumberProject       int
	AverageMonthlyHours int
	TimeSpendCompany    int
	WorkAccident        int
	PromotionLast5Years int
	Salary              SalaryTier
	Left                int
}

// RawRecord is a historical row as read from the file, salary still textual.
type RawRecord struct {
	SatisfactionLevel   float64
	LastEvaluation      float64
	NumberProject       int
	AverageMonthlyHours int
	TimeSpendCompany    int
	WorkAccident        int
	PromotionLast5Years int
	Salary              string
	Left                int
}

// Input is what a user submits for a single prediction. Salary stays a raw
// label until the encoder looks at it.
type Input struct {
	SatisfactionLevel   float64 `json:"satisfaction_level"`
	LastEvaluation      float64 `json:"last_evaluation"`
	NumberProject       int     `json:"number_project"`
	AverageMonthlyHours int     `json:"average_monthly_hours"`
	TimeSpendCompany    int     `json:"time_spend_company"`
	WorkAccident        int     `json:"work_accident"`
	PromotionLast5Years int     `json:"promotion_last_5years"`
	Salary              string  `json:"salary"`
}

// DefaultInput is the pre-filled form state of the dashboard.
func DefaultInput() Input {
	return Input{
		SatisfactionLevel:   0.2,
		LastEvaluation:      0.9,
		NumberProject:       7,
		AverageMonthlyHours: 270,
		TimeSpendCompany:    6,
		WorkAccident:        0,
		PromotionLast5Years: 0,
		Salary:              "low",
	}
}
