// Package insight builds the descriptive views shown next to a prediction:
// the historical employees sharing the predicted outcome, summarised as two
// distributions, one category count and a fixed narrative.
package insight

import (
	"fmt"
	"time"

	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/metrics"
)

const defaultGridSize = 200

// Insight is everything rendered for one predicted label.
type Insight struct {
	Label        predict.Label `json:"label"`
	Verdict      string        `json:"verdict"`
	Heading      string        `json:"heading"`
	SubsetSize   int           `json:"subset_size"`
	Satisfaction Distribution  `json:"satisfaction_level"`
	Evaluation   Distribution  `json:"last_evaluation"`
	Projects     Counts        `json:"number_project"`
	Narrative    Narrative     `json:"narrative"`
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithGridSize sets how many points the density curve is evaluated at.
func WithGridSize(n int) Option {
	return func(r *Renderer) {
		if n > 1 {
			r.gridSize = n
		}
	}
}

// Renderer builds insights from a shared read-only table.
type Renderer struct {
	table    *employee.Table
	gridSize int
}

// NewRenderer returns a Renderer over table.
func NewRenderer(table *employee.Table, opts ...Option) *Renderer {
	r := &Renderer{table: table, gridSize: defaultGridSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Partition returns the historical records whose outcome equals label.
func (r *Renderer) Partition(label predict.Label) []employee.Record {
	return r.table.Where(int(label))
}

// Render builds the insight for label.
func (r *Renderer) Render(label predict.Label) (Insight, error) {
	if !label.Valid() {
		return Insight{}, fmt.Errorf("%w: %d", ErrInvalidLabel, int(label))
	}
	start := time.Now()
	defer func() {
		metrics.RecordRenderLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	subset := r.Partition(label)
	group := groupName(label)

	satisfaction := make([]float64, len(subset))
	evaluation := make([]float64, len(subset))
	projects := make([]int, len(subset))
	for i, rec := range subset {
		satisfaction[i] = rec.SatisfactionLevel
		evaluation[i] = rec.LastEvaluation
		projects[i] = rec.NumberProject
	}

	return Insight{
		Label:        label,
		Verdict:      label.Verdict(),
		Heading:      group + " Employees: Key Insights",
		SubsetSize:   len(subset),
		Satisfaction: NewDistribution("satisfaction_level", "Satisfaction Level for "+group+" Employees", satisfaction, r.gridSize),
		Evaluation:   NewDistribution("last_evaluation", "Last Evaluation for "+group+" Employees", evaluation, r.gridSize),
		Projects:     NewCounts("number_project", "Number of Projects for "+group+" Employees", projects),
		Narrative:    NarrativeFor(label),
	}, nil
}

func groupName(label predict.Label) string {
	if label == predict.Churned {
		return "Churned"
	}
	return "Non-Churned"
}
