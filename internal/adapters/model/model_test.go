package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/errkind"
	. "github.com/smartystreets/goconvey/convey"
)

const forestPath = "testdata/forest.json"

func encode(in employee.Input) features.Vector {
	v, err := features.Encode(in)
	if err != nil {
		panic(err)
	}
	return v
}

func TestLoadForest(t *testing.T) {
	ctx := context.Background()

	Convey("Given the fixture forest", t, func() {
		c, err := Load(ctx, Options{Path: forestPath})
		So(err, ShouldBeNil)

		Convey("Then the format is inferred from the extension", func() {
			So(c.Info().Format, ShouldEqual, FormatForest)
			So(c.Info().Features, ShouldEqual, features.Width)
			So(c.Info().Detail, ShouldEqual, "3 trees")
		})

		Convey("When scoring the dashboard's default input", func() {
			label, err := c.Predict(ctx, encode(employee.DefaultInput()))

			Convey("Then it predicts churn", func() {
				So(err, ShouldBeNil)
				So(label, ShouldEqual, predict.Churned)
			})
		})

		Convey("When scoring a satisfied, well paid employee", func() {
			in := employee.DefaultInput()
			in.SatisfactionLevel = 0.8
			in.NumberProject = 3
			in.AverageMonthlyHours = 150
			in.Salary = "high"
			label, err := c.Predict(ctx, encode(in))

			So(err, ShouldBeNil)
			So(label, ShouldEqual, predict.Retained)
		})

		Convey("When averaging probabilities", func() {
			proba := c.(*Forest).Proba(encode(employee.DefaultInput()))

			So(proba, ShouldHaveLength, 2)
			So(proba[1], ShouldAlmostEqual, (0.8+0.7+0.5)/3, 1e-12)
			So(proba[0]+proba[1], ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.Predict(cctx, features.Vector{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestLoadForestRejects(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		return p
	}
	leaf := `{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[1,1]]}`

	Convey("Given broken artifacts", t, func() {
		cases := map[string]struct {
			body string
			want error
		}{
			"wrong width":     {`{"n_features":8,"classes":[0,1],"trees":[` + leaf + `]}`, features.ErrSchemaMismatch},
			"reordered names": {`{"n_features":9,"feature_names":["last_evaluation","satisfaction_level","number_project","average_monthly_hours","time_spend_company","work_accident","promotion_last_5years","salary_is_medium","salary_is_high"],"classes":[0,1],"trees":[` + leaf + `]}`, features.ErrSchemaMismatch},
			"three classes":   {`{"n_features":9,"classes":[0,1,2],"trees":[` + leaf + `]}`, ErrMalformed},
			"bad class":       {`{"n_features":9,"classes":[0,4],"trees":[` + leaf + `]}`, ErrMalformed},
			"no trees":        {`{"n_features":9,"classes":[0,1],"trees":[]}`, ErrMalformed},
			"backward child":  {`{"n_features":9,"classes":[0,1],"trees":[{"children_left":[0],"children_right":[0],"feature":[0],"threshold":[0],"value":[[1,1]]}]}`, ErrMalformed},
			"bad feature":     {`{"n_features":9,"classes":[0,1],"trees":[{"children_left":[1,-1,-1],"children_right":[2,-1,-1],"feature":[12,-2,-2],"threshold":[0,-2,-2],"value":[[1,1],[1,0],[0,1]]}]}`, ErrMalformed},
			"empty leaf":      {`{"n_features":9,"classes":[0,1],"trees":[{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[0,0]]}]}`, ErrMalformed},
			"not json":        {`{"n_features":`, ErrMalformed},
		}
		for name, tc := range cases {
			_, err := Load(ctx, Options{Path: write(name+".json", tc.body)})
			So(errors.Is(err, tc.want), ShouldBeTrue)
			So(errors.Is(err, errkind.ErrDataUnavailable), ShouldBeTrue)
		}
	})

	Convey("Given a missing file", t, func() {
		_, err := Load(ctx, Options{Path: filepath.Join(dir, "missing.json")})
		So(errors.Is(err, errkind.ErrDataUnavailable), ShouldBeTrue)
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
	})
}

func TestResolveFormat(t *testing.T) {
	Convey("Given artifact paths", t, func() {
		f, err := resolveFormat(Options{Path: "models/rf.JSON"})
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatForest)

		f, err = resolveFormat(Options{Path: "models/rf.onnx"})
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatONNX)

		f, err = resolveFormat(Options{Path: "models/rf.bin", Format: "ONNX"})
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatONNX)

		_, err = resolveFormat(Options{Path: "models/rf.pkl"})
		So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)

		_, err = resolveFormat(Options{Path: "models/rf.json", Format: "pickle"})
		So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestPickIO(t *testing.T) {
	floatIn := ort.InputOutputInfo{Name: "float_input", DataType: ort.TensorElementDataTypeFloat, Dimensions: ort.NewShape(-1, 9)}
	labelOut := ort.InputOutputInfo{Name: "label", DataType: ort.TensorElementDataTypeInt64, Dimensions: ort.NewShape(-1)}
	probaOut := ort.InputOutputInfo{Name: "probabilities", DataType: ort.TensorElementDataTypeFloat, Dimensions: ort.NewShape(-1, 2)}

	Convey("Given a typical exported classifier signature", t, func() {
		in, out, err := pickIO([]ort.InputOutputInfo{floatIn}, []ort.InputOutputInfo{probaOut, labelOut})

		So(err, ShouldBeNil)
		So(in, ShouldEqual, "float_input")
		So(out, ShouldEqual, "label")
	})

	Convey("Given a model trained on a different width", t, func() {
		wide := floatIn
		wide.Dimensions = ort.NewShape(-1, 11)
		_, _, err := pickIO([]ort.InputOutputInfo{wide}, []ort.InputOutputInfo{labelOut})

		So(errors.Is(err, predict.ErrShapeMismatch), ShouldBeTrue)
	})

	Convey("Given a model with only probability output", t, func() {
		_, _, err := pickIO([]ort.InputOutputInfo{floatIn}, []ort.InputOutputInfo{probaOut})
		So(errors.Is(err, ErrMalformed), ShouldBeTrue)
	})

	Convey("Given a model with two inputs", t, func() {
		_, _, err := pickIO([]ort.InputOutputInfo{floatIn, floatIn}, []ort.InputOutputInfo{labelOut})
		So(errors.Is(err, ErrMalformed), ShouldBeTrue)
	})
}

func TestONNXModel(t *testing.T) {
	path := os.Getenv("CHURN_TEST_ONNX_MODEL")
	if path == "" {
		t.Skip("set CHURN_TEST_ONNX_MODEL to an exported classifier to run")
	}

	Convey("Given an exported ONNX classifier", t, func() {
		c, err := Load(context.Background(), Options{Path: path, ONNXLibraryPath: os.Getenv("CHURN_TEST_ONNX_LIBRARY")})
		So(err, ShouldBeNil)

		label, err := c.Predict(context.Background(), encode(employee.DefaultInput()))
		So(err, ShouldBeNil)
		So(label.Valid(), ShouldBeTrue)
	})
}
