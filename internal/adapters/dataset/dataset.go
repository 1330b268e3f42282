// Package dataset reads the historical employee file into an immutable table.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/pkg/errkind"
)

const ctxCheckEvery = 1024

// column identifies a required field of the historical file.
type column int

const (
	colSatisfaction column = iota
	colEvaluation
	colProjects
	colHours
	colTenure
	colAccident
	colPromotion
	colSalary
	colLeft
	numColumns
)

// headerNames maps lower-cased header spellings to columns. The historical
// export misspells "monthly"; both spellings are accepted.
var headerNames = map[string]column{
	"satisfaction_level":    colSatisfaction,
	"last_evaluation":       colEvaluation,
	"number_project":        colProjects,
	"average_montly_hours":  colHours,
	"average_monthly_hours": colHours,
	"time_spend_company":    colTenure,
	"work_accident":         colAccident,
	"promotion_last_5years": colPromotion,
	"salary":                colSalary,
	"left":                  colLeft,
}

var canonicalNames = [numColumns]string{
	"satisfaction_level", "last_evaluation", "number_project", "average_montly_hours",
	"time_spend_company", "Work_accident", "promotion_last_5years", "salary", "left",
}

// Load reads the CSV at path. Any problem with the file is ErrDataUnavailable.
func Load(ctx context.Context, path string) (*employee.Table, error) {
	const op = "dataset.load"
	f, err := os.Open(path)
	if err != nil {
		return nil, errkind.WrapKind(op, errkind.ErrDataUnavailable, err)
	}
	defer f.Close()

	table, err := Read(ctx, f)
	if err != nil {
		return nil, errkind.WrapKind(op, errkind.ErrDataUnavailable, fmt.Errorf("%s: %w", path, err))
	}
	return table, nil
}

// Read parses CSV from r, normalizes salary tiers and builds the table.
func Read(ctx context.Context, r io.Reader) (*employee.Table, error) {
	raw, err := ReadRaw(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	records, err := employee.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return employee.NewTable(records), nil
}

// ReadRaw parses CSV from r without touching the salary column.
func ReadRaw(ctx context.Context, r io.Reader) ([]employee.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var out []employee.RawRecord
	for line := 2; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func mapHeader(header []string) ([numColumns]int, error) {
	var index [numColumns]int
	for i := range index {
		index[i] = -1
	}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if c, ok := headerNames[name]; ok && index[c] < 0 {
			index[c] = i
		}
	}
	var missing []string
	for c, i := range index {
		if i < 0 {
			missing = append(missing, canonicalNames[c])
		}
	}
	if len(missing) > 0 {
		return index, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRow(row []string, index [numColumns]int) (employee.RawRecord, error) {
	var (
		rec  employee.RawRecord
		errs []error
	)
	cell := func(c column) string { return strings.TrimSpace(row[index[c]]) }
	num := func(c column) float64 {
		v, err := strconv.ParseFloat(cell(c), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrBadCell, canonicalNames[c], cell(c)))
		}
		return v
	}
	// Score columns may be blank in historical exports; a blank reads as
	// missing (NaN) and is left out of the plots.
	score := func(c column) float64 {
		if cell(c) == "" {
			return math.NaN()
		}
		return num(c)
	}
	whole := func(c column) int {
		v := num(c)
		if v != math.Trunc(v) {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not a whole number", ErrBadCell, canonicalNames[c], cell(c)))
		}
		return int(v)
	}

	rec.SatisfactionLevel = score(colSatisfaction)
	rec.LastEvaluation = score(colEvaluation)
	rec.NumberProject = whole(colProjects)
	rec.AverageMonthlyHours = whole(colHours)
	rec.TimeSpendCompany = whole(colTenure)
	rec.WorkAccident = whole(colAccident)
	rec.PromotionLast5Years = whole(colPromotion)
	rec.Salary = cell(colSalary)
	rec.Left = whole(colLeft)

	if rec.Left != 0 && rec.Left != 1 {
		errs = append(errs, fmt.Errorf("%w: left=%d", ErrBadCell, rec.Left))
	}
	return rec, errors.Join(errs...)
}
