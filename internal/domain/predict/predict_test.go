package predict_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/errkind"
	"github.com/okian/churnboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubClassifier struct {
	label predict.Label
	err   error
	seen  []features.Vector
}

func (s *stubClassifier) Predict(_ context.Context, v features.Vector) (predict.Label, error) {
	s.seen = append(s.seen, v)
	return s.label, s.err
}

func (s *stubClassifier) Info() predict.ModelInfo {
	return predict.ModelInfo{Format: "stub", Path: "stub", Features: features.Width}
}

func TestPredictor(t *testing.T) {
	ctx := context.Background()

	Convey("Given a classifier that answers churn", t, func() {
		stub := &stubClassifier{label: predict.Churned}
		p := predict.New(stub, logger.Get())
		v := features.Vector{0.2, 0.9, 7, 270, 6, 0, 0, 0, 0}

		Convey("When predicting", func() {
			label, err := p.Predict(ctx, v)

			Convey("Then the label is returned and the vector is passed unmodified", func() {
				So(err, ShouldBeNil)
				So(label, ShouldEqual, predict.Churned)
				So(stub.seen, ShouldHaveLength, 1)
				So(stub.seen[0], ShouldResemble, v)
			})
		})
	})

	Convey("Given a classifier that rejects the vector", t, func() {
		stub := &stubClassifier{err: predict.ErrShapeMismatch}
		p := predict.New(stub, logger.Get())

		_, err := p.Predict(ctx, features.Vector{})

		Convey("Then a model invocation error is returned, not swallowed, and not retried", func() {
			So(errors.Is(err, errkind.ErrModelInvocation), ShouldBeTrue)
			So(errors.Is(err, predict.ErrShapeMismatch), ShouldBeTrue)
			So(stub.seen, ShouldHaveLength, 1)
		})
	})

	Convey("Given a classifier returning an out-of-domain label", t, func() {
		p := predict.New(&stubClassifier{label: 3}, logger.Get())

		_, err := p.Predict(ctx, features.Vector{})

		So(errors.Is(err, errkind.ErrModelInvocation), ShouldBeTrue)
		So(errors.Is(err, predict.ErrLabelOutOfDomain), ShouldBeTrue)
	})
}

func TestLabel(t *testing.T) {
	Convey("Labels describe themselves", t, func() {
		So(predict.Churned.Verdict(), ShouldEqual, "Churn")
		So(predict.Retained.Verdict(), ShouldEqual, "No Churn")
		So(predict.Churned.String(), ShouldEqual, "churned")
		So(predict.Label(2).Valid(), ShouldBeFalse)
	})
}
