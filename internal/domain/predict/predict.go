// Package predict defines the classifier contract and the guarded call the
// request pipeline makes through it.
package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/pkg/errkind"
	"github.com/okian/churnboard/pkg/logger"
	"github.com/okian/churnboard/pkg/metrics"
)

// Label is the binary outcome.
type Label int

// Outcomes.
const (
	Retained Label = 0
	Churned  Label = 1
)

// Valid reports whether l is one of the two outcomes.
func (l Label) Valid() bool { return l == Retained || l == Churned }

func (l Label) String() string {
	switch l {
	case Retained:
		return "retained"
	case Churned:
		return "churned"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// Verdict is the user-facing wording of the label.
func (l Label) Verdict() string {
	if l == Churned {
		return "Churn"
	}
	return "No Churn"
}

// ModelInfo describes a loaded classifier.
type ModelInfo struct {
	Format   string `json:"format"`
	Path     string `json:"path"`
	Features int    `json:"features"`
	Detail   string `json:"detail,omitempty"`
}

// Classifier is an opaque pre-trained binary model.
type Classifier interface {
	// Predict scores one vector. A returned error means the model rejected it.
	Predict(ctx context.Context, v features.Vector) (Label, error)
	Info() ModelInfo
}

// Predictor wraps a Classifier with the contract checks the pipeline relies on.
// It is safe for concurrent use when the Classifier is.
type Predictor struct {
	classifier Classifier
	logger     logger.Logger
}

// New returns a Predictor over c.
func New(c Classifier, log logger.Logger) *Predictor {
	return &Predictor{classifier: c, logger: log}
}

// Info proxies the classifier's description.
func (p *Predictor) Info() ModelInfo { return p.classifier.Info() }

// Predict scores v exactly once. Any rejection or an out-of-domain label is an
// ErrModelInvocation: it points at a disagreement between the encoder and the
// model, so it is logged at error level with the offending vector.
func (p *Predictor) Predict(ctx context.Context, v features.Vector) (Label, error) {
	const op = "predict.predict"
	start := time.Now()
	label, err := p.classifier.Predict(ctx, v)
	metrics.RecordInferenceLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err == nil && !label.Valid() {
		err = fmt.Errorf("%w: %d", ErrLabelOutOfDomain, int(label))
	}
	if err != nil {
		p.logger.Error(ctx, "classifier rejected feature vector; encoder and model disagree",
			logger.Any("vector", v.Slice()),
			logger.Any("columns", features.Columns),
			logger.String("model", p.classifier.Info().Path),
			logger.Error(err),
		)
		return 0, errkind.WrapKind(op, errkind.ErrModelInvocation, err)
	}
	return label, nil
}
