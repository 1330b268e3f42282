// Package service wires the dataset, the classifier and the insight renderer
// into the request pipeline the HTTP API and the CLI call.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/churnboard/internal/adapters/dataset"
	"github.com/okian/churnboard/internal/adapters/model"
	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/insight"
	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/errkind"
	"github.com/okian/churnboard/pkg/logger"
	"github.com/okian/churnboard/pkg/metrics"
)

// Outcome is the result of one pipeline run.
type Outcome struct {
	Input    employee.Input  `json:"input"`
	Features features.Vector `json:"features"`
	Filled   []string        `json:"filled,omitempty"`
	Label    predict.Label   `json:"label"`
	Verdict  string          `json:"verdict"`
	Insight  insight.Insight `json:"insight"`
}

// Stats summarises what the service has loaded.
type Stats struct {
	Started       bool              `json:"started"`
	Rows          int               `json:"rows"`
	Retained      int               `json:"retained"`
	Churned       int               `json:"churned"`
	DatasetPath   string            `json:"dataset_path"`
	Model         predict.ModelInfo `json:"model"`
	UptimeSeconds float64           `json:"uptime_seconds"`
}

// pipeline is everything built by Start. It is never mutated afterwards, so
// requests read it without locking.
type pipeline struct {
	table     *employee.Table
	predictor *predict.Predictor
	renderer  *insight.Renderer
	closer    io.Closer
	startedAt time.Time
}

// Service implements the API dependencies for the dashboard.
type Service struct {
	mu sync.Mutex

	// Configuration
	datasetPath string
	modelOpts   model.Options
	gridSize    int
	classifier  predict.Classifier

	state atomic.Pointer[pipeline]

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatasetPath sets the historical CSV to load.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.datasetPath = path
		}
	}
}

// WithModel sets how the classifier artifact is loaded.
func WithModel(opts model.Options) Option {
	return func(s *Service) {
		s.modelOpts = opts
	}
}

// WithClassifier uses c instead of loading an artifact.
func WithClassifier(c predict.Classifier) Option {
	return func(s *Service) {
		s.classifier = c
	}
}

// WithKDEGridSize sets the density curve resolution.
func WithKDEGridSize(n int) Option {
	return func(s *Service) {
		if n > 1 {
			s.gridSize = n
		}
	}
}

// New constructs a new Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{gridSize: 200}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset and then the classifier. It runs once; later calls
// return nil. Any failure is ErrDataUnavailable and the service stays unusable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Load() != nil {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "loading dataset", logger.String("path", s.datasetPath))
	table, err := dataset.Load(ctx, s.datasetPath)
	if err != nil {
		return err
	}
	retained, churned := table.Outcomes()
	metrics.UpdateDatasetRows(retained, churned)

	c := s.classifier
	if c == nil {
		s.logger.Info(ctx, "loading model", logger.String("path", s.modelOpts.Path))
		if c, err = model.Load(ctx, s.modelOpts); err != nil {
			return err
		}
	}

	p := &pipeline{
		table:     table,
		predictor: predict.New(c, s.logger.Named("predict")),
		renderer:  insight.NewRenderer(table, insight.WithGridSize(s.gridSize)),
		startedAt: time.Now(),
	}
	if closer, ok := c.(io.Closer); ok {
		p.closer = closer
	}
	s.state.Store(p)

	info := c.Info()
	s.logger.Info(ctx, "churn service started",
		logger.Int("rows", table.Len()),
		logger.Int("retained", retained),
		logger.Int("churned", churned),
		logger.String("model_format", info.Format),
		logger.String("model_detail", info.Detail),
	)
	return nil
}

// Stop releases the classifier, if it holds resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.state.Swap(nil)
	if p == nil {
		return
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing model", logger.Error(err))
		}
	}
	s.logger.Info(context.Background(), "churn service stopped")
}

// Predict encodes in, asks the classifier for a label and renders the
// matching insight. Range checks are the caller's job; only an unknown salary
// tier is rejected here, before the classifier is called.
func (s *Service) Predict(ctx context.Context, in employee.Input) (Outcome, error) {
	const op = "service.predict"
	p := s.state.Load()
	if p == nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, ErrNotStarted)
	}

	start := time.Now()
	vec, filled, err := features.EncodeWithReport(in)
	metrics.RecordEncodeLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return Outcome{}, err
	}
	for _, col := range filled {
		s.logger.Warn(ctx, "feature column missing from encoded row, defaulted to 0",
			logger.String("column", col))
		metrics.RecordDefaultedColumn(col)
	}

	label, err := p.predictor.Predict(ctx, vec)
	if err != nil {
		return Outcome{}, err
	}
	if err := metrics.RecordPrediction(int(label)); err != nil {
		s.logger.Warn(ctx, "recording prediction", logger.Error(err))
	}

	view, err := p.renderer.Render(label)
	if err != nil {
		return Outcome{}, errkind.WrapKind(op, errkind.ErrModelInvocation, err)
	}

	s.logger.Debug(ctx, "prediction served",
		logger.String("verdict", label.Verdict()),
		logger.Int("subset", view.SubsetSize),
	)
	return Outcome{
		Input:    in,
		Features: vec,
		Filled:   filled,
		Label:    label,
		Verdict:  label.Verdict(),
		Insight:  view,
	}, nil
}

// ModelInfo describes the loaded classifier. It is zero before Start.
func (s *Service) ModelInfo() predict.ModelInfo {
	if p := s.state.Load(); p != nil {
		return p.predictor.Info()
	}
	return predict.ModelInfo{}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	st := Stats{DatasetPath: s.datasetPath}
	p := s.state.Load()
	if p == nil {
		return st
	}
	st.Started = true
	st.Rows = p.table.Len()
	st.Retained, st.Churned = p.table.Outcomes()
	st.Model = p.predictor.Info()
	st.UptimeSeconds = time.Since(p.startedAt).Seconds()
	return st
}
