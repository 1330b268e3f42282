// Package features turns a user's form input into the fixed numeric schema
// the churn classifier was trained on.
package features

import (
	"fmt"
	"sort"

	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/pkg/errkind"
)

// Schema column names.
const (
	SatisfactionLevel   = "satisfaction_level"
	LastEvaluation      = "last_evaluation"
	NumberProject       = "number_project"
	AverageMonthlyHours = "average_monthly_hours"
	TimeSpendCompany    = "time_spend_company"
	WorkAccident        = "work_accident"
	PromotionLast5Years = "promotion_last_5years"
	SalaryIsMedium      = "salary_is_medium"
	SalaryIsHigh        = "salary_is_high"
)

// Width is the number of features the classifier consumes.
const Width = 9

// Columns is the training column order. Reordering it silently breaks every
// model trained against it.
var Columns = [Width]string{
	SatisfactionLevel,
	LastEvaluation,
	NumberProject,
	AverageMonthlyHours,
	TimeSpendCompany,
	WorkAccident,
	PromotionLast5Years,
	SalaryIsMedium,
	SalaryIsHigh,
}

// trainingAliases maps the column names used by the historical training
// pipeline onto schema names.
var trainingAliases = map[string]string{
	"average_montly_hours": AverageMonthlyHours,
	"Work_accident":        WorkAccident,
	"salary_1":             SalaryIsMedium,
	"salary_2":             SalaryIsHigh,
}

// Canonical returns the schema name for a column, resolving training-time
// aliases. Unknown names are returned unchanged.
func Canonical(name string) string {
	if c, ok := trainingAliases[name]; ok {
		return c
	}
	return name
}

// Vector is an encoded feature row in Columns order.
type Vector [Width]float64

// Slice returns the values as a fresh float64 slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Width)
	copy(out, v[:])
	return out
}

// Float32 returns the values narrowed to float32, the tensor type most
// exported models expect.
func (v Vector) Float32() []float32 {
	out := make([]float32, Width)
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Get returns the value of a named column.
func (v Vector) Get(name string) (float64, bool) {
	name = Canonical(name)
	for i, c := range Columns {
		if c == name {
			return v[i], true
		}
	}
	return 0, false
}

// Row is an unordered set of named feature values, the intermediate shape
// between construction and alignment.
type Row map[string]float64

// Encode converts in into a Vector. The only check performed is the salary
// vocabulary; numeric ranges are the caller's responsibility.
func Encode(in employee.Input) (Vector, error) {
	v, _, err := EncodeWithReport(in)
	return v, err
}

// EncodeWithReport is Encode that also returns the columns FillDefaults had
// to insert, so callers can surface them.
func EncodeWithReport(in employee.Input) (Vector, []string, error) {
	const op = "features.encode"
	tier, err := employee.ParseSalaryTier(in.Salary)
	if err != nil {
		return Vector{}, nil, errkind.WrapKind(op, errkind.ErrValidation, err)
	}
	row := build(in, tier)
	filled := FillDefaults(row)
	return Align(row), filled, nil
}

func build(in employee.Input, tier employee.SalaryTier) Row {
	row := Row{
		SatisfactionLevel:   in.SatisfactionLevel,
		LastEvaluation:      in.LastEvaluation,
		NumberProject:       float64(in.NumberProject),
		AverageMonthlyHours: float64(in.AverageMonthlyHours),
		TimeSpendCompany:    float64(in.TimeSpendCompany),
		WorkAccident:        float64(in.WorkAccident),
		PromotionLast5Years: float64(in.PromotionLast5Years),
	}
	// "low" is the dropped reference level: both indicators stay 0.
	switch tier {
	case employee.Medium:
		row[SalaryIsMedium], row[SalaryIsHigh] = 1, 0
	case employee.High:
		row[SalaryIsMedium], row[SalaryIsHigh] = 0, 1
	default:
		row[SalaryIsMedium], row[SalaryIsHigh] = 0, 0
	}
	return row
}

// FillDefaults inserts 0 for every schema column missing from row and returns
// the names it inserted, sorted.
//
// This is lossy: a column that was renamed or forgotten upstream is scored as
// 0 instead of failing, which can hide an encoding bug. Callers should treat a
// non-empty result as a defect signal.
func FillDefaults(row Row) []string {
	var filled []string
	for _, c := range Columns {
		if _, ok := row[c]; !ok {
			row[c] = 0
			filled = append(filled, c)
		}
	}
	sort.Strings(filled)
	return filled
}

// Align lays row out in Columns order. Keys outside the schema are dropped and
// absent keys read as 0.
func Align(row Row) Vector {
	var v Vector
	for i, c := range Columns {
		v[i] = row[c]
	}
	return v
}

// CheckSchema reports whether names, after alias resolution, equal Columns in
// order. Used when a model carries its own feature list.
func CheckSchema(names []string) error {
	if len(names) != Width {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(names), Width)
	}
	for i, n := range names {
		if Canonical(n) != Columns[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, n, Columns[i])
		}
	}
	return nil
}
