package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/churnboard/internal/adapters/plot"
	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/insight"
	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/errkind"
	"github.com/okian/churnboard/pkg/logger"
	"github.com/okian/churnboard/pkg/metrics"
)

var dashboardTmpl = template.Must(template.ParseFS(dashboardFS, "dashboard.html"))

type option struct {
	Value    string
	Label    string
	Selected bool
}

type featureRow struct {
	Name  string
	Value float64
}

type resultView struct {
	Verdict      string
	Churn        bool
	Heading      string
	Satisfaction chart
	Evaluation   chart
	Projects     chart
	Narrative    insight.Narrative
	Features     []featureRow
}

type chart struct {
	Title string
	SVG   template.HTML
}

type pageData struct {
	Input     employee.Input
	Salary    []option
	Accident  []option
	Promotion []option
	Bounds    map[string]int
	Model     predict.ModelInfo
	Errors    []string
	Result    *resultView
}

// dashboardHandler serves the form page and its submissions.
type dashboardHandler struct {
	deps  Dependencies
	plots *plot.Renderer
	title cases.Caser
}

func newDashboardHandler(deps Dependencies, plots *plot.Renderer) *dashboardHandler {
	return &dashboardHandler{deps: deps, plots: plots, title: cases.Title(language.English)}
}

// HandleIndex handles GET / with the form pre-filled with defaults.
func (h *dashboardHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "GET, HEAD")
		return
	}
	h.render(w, r, http.StatusOK, h.page(employee.DefaultInput()))
}

// HandlePredict handles POST /predict from the form and re-renders the page
// with the verdict, the charts and the narrative.
func (h *dashboardHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard_predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	ctx := r.Context()
	log := requestLogger(ctx)

	in, err := parseForm(r)
	page := h.page(in)
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		err = errkind.WrapKind(op, errkind.ErrValidation, err)
		h.fail(w, r, page, err)
		return
	}

	out, err := h.deps.Predict(ctx, in)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}

	figs, err := h.plots.Insight(out.Insight)
	if err != nil {
		log.Error(ctx, "rendering charts", logger.Error(err))
		h.fail(w, r, page, fmt.Errorf("%s: %w: %w", op, ErrRender, err))
		return
	}

	res := &resultView{
		Verdict:      out.Verdict,
		Churn:        out.Label == predict.Churned,
		Heading:      out.Insight.Heading,
		Satisfaction: chart{Title: out.Insight.Satisfaction.Title, SVG: template.HTML(figs.Satisfaction)}, //nolint:gosec // generated by gonum/plot
		Evaluation:   chart{Title: out.Insight.Evaluation.Title, SVG: template.HTML(figs.Evaluation)},     //nolint:gosec // generated by gonum/plot
		Projects:     chart{Title: out.Insight.Projects.Title, SVG: template.HTML(figs.Projects)},         //nolint:gosec // generated by gonum/plot
		Narrative:    out.Insight.Narrative,
	}
	for i, name := range features.Columns {
		res.Features = append(res.Features, featureRow{Name: name, Value: out.Features[i]})
	}
	page.Result = res
	h.render(w, r, http.StatusOK, page)
}

func (h *dashboardHandler) fail(w http.ResponseWriter, r *http.Request, page pageData, err error) {
	status, code := statusFor(err)
	metrics.RecordRequestError(code)
	if status >= http.StatusInternalServerError {
		requestLogger(r.Context()).Error(r.Context(), "dashboard prediction failed", logger.Error(err))
		page.Errors = []string{"The model could not score this input. The failure has been logged."}
	} else {
		page.Errors = validationMessages(err)
	}
	h.render(w, r, status, page)
}

func (h *dashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, page pageData) {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, page); err != nil {
		requestLogger(r.Context()).Error(r.Context(), "executing dashboard template", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *dashboardHandler) page(in employee.Input) pageData {
	p := pageData{
		Input: in,
		Bounds: map[string]int{
			"MinProjects": employee.MinProjects,
			"MaxProjects": employee.MaxProjects,
			"MinHours":    employee.MinHours,
			"MaxHours":    employee.MaxHours,
			"MinYears":    employee.MinYears,
			"MaxYears":    employee.MaxYears,
		},
		Accident:  binaryOptions(in.WorkAccident),
		Promotion: binaryOptions(in.PromotionLast5Years),
		Model:     h.deps.ModelInfo(),
	}
	current := strings.ToLower(strings.TrimSpace(in.Salary))
	for _, t := range employee.Tiers {
		v := t.String()
		p.Salary = append(p.Salary, option{Value: v, Label: h.title.String(v), Selected: v == current})
	}
	return p
}

func binaryOptions(v int) []option {
	return []option{
		{Value: "0", Label: "0", Selected: v == 0},
		{Value: "1", Label: "1", Selected: v == 1},
	}
}

// parseForm reads the submitted fields. The returned Input holds whatever
// parsed, so the form can be re-rendered with the user's values.
func parseForm(r *http.Request) (employee.Input, error) {
	in := employee.DefaultInput()
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	var errs []error
	float := func(name string, dst *float64) {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, name))
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", name, raw))
			return
		}
		*dst = v
	}
	integer := func(name string, dst *int) {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, name))
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a whole number", name, raw))
			return
		}
		*dst = v
	}

	float("satisfaction_level", &in.SatisfactionLevel)
	float("last_evaluation", &in.LastEvaluation)
	integer("number_project", &in.NumberProject)
	integer("average_monthly_hours", &in.AverageMonthlyHours)
	integer("time_spend_company", &in.TimeSpendCompany)
	integer("work_accident", &in.WorkAccident)
	integer("promotion_last_5years", &in.PromotionLast5Years)
	in.Salary = r.PostForm.Get("salary")

	return in, errors.Join(errs...)
}

// validationMessages strips the kind wrappers and returns one line per
// joined cause.
func validationMessages(err error) []string {
	for {
		k, ok := err.(*errkind.Error)
		if !ok || k.Err == nil {
			break
		}
		err = k.Err
	}
	return strings.Split(err.Error(), "\n")
}
