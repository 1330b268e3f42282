package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/insight"
	"github.com/okian/churnboard/pkg/errkind"
	"github.com/okian/churnboard/pkg/logger"
	"github.com/okian/churnboard/pkg/metrics"
)

const maxBodyBytes = 1 << 16

// PredictRequest mirrors the OpenAPI schema for POST /api/predict. Every field
// is required; pointers tell a missing field from a zero.
type PredictRequest struct {
	SatisfactionLevel   *float64 `json:"satisfaction_level"`
	LastEvaluation      *float64 `json:"last_evaluation"`
	NumberProject       *int     `json:"number_project"`
	AverageMonthlyHours *int     `json:"average_monthly_hours"`
	TimeSpendCompany    *int     `json:"time_spend_company"`
	WorkAccident        *int     `json:"work_accident"`
	PromotionLast5Years *int     `json:"promotion_last_5years"`
	Salary              *string  `json:"salary"`
}

// NewPredictRequest builds a complete request from in.
func NewPredictRequest(in employee.Input) PredictRequest {
	return PredictRequest{
		SatisfactionLevel:   &in.SatisfactionLevel,
		LastEvaluation:      &in.LastEvaluation,
		NumberProject:       &in.NumberProject,
		AverageMonthlyHours: &in.AverageMonthlyHours,
		TimeSpendCompany:    &in.TimeSpendCompany,
		WorkAccident:        &in.WorkAccident,
		PromotionLast5Years: &in.PromotionLast5Years,
		Salary:              &in.Salary,
	}
}

func (p PredictRequest) input() (employee.Input, error) {
	var missing []error
	need := func(ok bool, name string) {
		if !ok {
			missing = append(missing, fmt.Errorf("%w: %s", ErrMissingField, name))
		}
	}
	need(p.SatisfactionLevel != nil, "satisfaction_level")
	need(p.LastEvaluation != nil, "last_evaluation")
	need(p.NumberProject != nil, "number_project")
	need(p.AverageMonthlyHours != nil, "average_monthly_hours")
	need(p.TimeSpendCompany != nil, "time_spend_company")
	need(p.WorkAccident != nil, "work_accident")
	need(p.PromotionLast5Years != nil, "promotion_last_5years")
	need(p.Salary != nil, "salary")
	if len(missing) > 0 {
		return employee.Input{}, errors.Join(missing...)
	}
	return employee.Input{
		SatisfactionLevel:   *p.SatisfactionLevel,
		LastEvaluation:      *p.LastEvaluation,
		NumberProject:       *p.NumberProject,
		AverageMonthlyHours: *p.AverageMonthlyHours,
		TimeSpendCompany:    *p.TimeSpendCompany,
		WorkAccident:        *p.WorkAccident,
		PromotionLast5Years: *p.PromotionLast5Years,
		Salary:              *p.Salary,
	}, nil
}

// PredictResponse is the JSON body of a successful prediction.
type PredictResponse struct {
	Label    int             `json:"label"`
	Verdict  string          `json:"verdict"`
	Columns  []string        `json:"columns"`
	Features []float64       `json:"features"`
	Filled   []string        `json:"filled,omitempty"`
	Insight  insight.Insight `json:"insight"`
}

// PredictHandler serves POST /api/predict.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /api/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	ctx := r.Context()

	var req PredictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.fail(w, r, errkind.WrapKind(op, errkind.ErrValidation, fmt.Errorf("%w: %w", ErrBadRequest, err)))
		return
	}
	in, err := req.input()
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		h.fail(w, r, errkind.WrapKind(op, errkind.ErrValidation, err))
		return
	}

	out, err := h.deps.Predict(ctx, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PredictResponse{
		Label:    int(out.Label),
		Verdict:  out.Verdict,
		Columns:  features.Columns[:],
		Features: out.Features.Slice(),
		Filled:   out.Filled,
		Insight:  out.Insight,
	})
}

func (h *PredictHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	metrics.RecordRequestError(code)
	if status >= http.StatusInternalServerError {
		requestLogger(r.Context()).Error(r.Context(), "prediction failed", logger.Error(err))
	}
	writeError(w, status, code, err)
}
