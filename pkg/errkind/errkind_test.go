package errkind_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/churnboard/pkg/errkind"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWrapKind(t *testing.T) {
	Convey("Given a cause wrapped with a kind", t, func() {
		cause := errors.New("salary tier \"platinum\"")
		err := errkind.WrapKind("features.encode", errkind.ErrValidation, cause)

		Convey("Then both kind and cause are reachable", func() {
			So(errors.Is(err, errkind.ErrValidation), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, errkind.ErrModelInvocation), ShouldBeFalse)
		})

		Convey("And the message names op, kind and cause", func() {
			So(err.Error(), ShouldEqual, `features.encode: validation failed: salary tier "platinum"`)
		})

		Convey("And further wrapping keeps the kind", func() {
			outer := fmt.Errorf("request: %w", err)
			So(errkind.KindOf(outer), ShouldEqual, errkind.ErrValidation)
			So(errkind.Name(outer), ShouldEqual, "validation")

			var typed *errkind.Error
			So(errors.As(outer, &typed), ShouldBeTrue)
			So(typed.Op, ShouldEqual, "features.encode")
		})
	})

	Convey("Given a nil cause", t, func() {
		So(errkind.WrapKind("op", errkind.ErrValidation, nil), ShouldBeNil)
	})
}

func TestNewKind(t *testing.T) {
	Convey("Given a kind without a cause", t, func() {
		err := errkind.NewKind("predict", errkind.ErrModelInvocation)

		So(err.Error(), ShouldEqual, "predict: model invocation failed")
		So(errkind.Name(err), ShouldEqual, "model_invocation")
	})

	Convey("Given an unclassified error", t, func() {
		err := errors.New("boom")
		So(errkind.KindOf(err), ShouldBeNil)
		So(errkind.Name(err), ShouldEqual, "internal")
	})

	Convey("Given a data error", t, func() {
		err := errkind.WrapKind("dataset.load", errkind.ErrDataUnavailable, errors.New("missing"))
		So(errkind.Name(err), ShouldEqual, "data_unavailable")
	})
}
