package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/churnboard/internal/adapters/http/api"
	"github.com/okian/churnboard/internal/adapters/model"
	app "github.com/okian/churnboard/internal/app"
	"github.com/okian/churnboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	datasetPath = "../../internal/adapters/dataset/testdata/hr_sample.csv"
	forestPath  = "../../internal/adapters/model/testdata/forest.json"
)

func fixtures(t *testing.T) {
	t.Helper()
	t.Setenv("CHURN_CONFIG", "")
	t.Setenv("CHURN_DATASET_PATH", datasetPath)
	t.Setenv("CHURN_MODEL_PATH", forestPath)
	t.Setenv("CHURN_KDE_GRID_SIZE", "16")
}

func run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestPredictCommand(t *testing.T) {
	fixtures(t)

	Convey("Given the default flags", t, func() {
		out, _, err := run("predict")

		Convey("Then the verdict, the features and the narrative are printed", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "The predicted churn result is: Churn")
			So(out, ShouldContainSubstring, "salary_is_medium")
			So(out, ShouldContainSubstring, "Churned Employees: Key Insights")
			So(out, ShouldContainSubstring, "7 historical employees share this outcome.")
			So(out, ShouldContainSubstring, "Summary for Churned Employees")
		})
	})

	Convey("Given a satisfied employee as JSON", t, func() {
		out, _, err := run("predict", "--satisfaction", "0.8", "--projects", "3",
			"--hours", "150", "--salary", "high", "--json")
		So(err, ShouldBeNil)

		var o app.Outcome
		So(json.Unmarshal([]byte(out), &o), ShouldBeNil)
		So(o.Verdict, ShouldEqual, "No Churn")
		So(o.Insight.SubsetSize, ShouldEqual, 9)
	})

	Convey("Given an out of range flag", t, func() {
		_, _, err := run("predict", "--hours", "400")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "average_monthly_hours")
	})
}

func TestProbeCommand(t *testing.T) {
	fixtures(t)
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	svc := app.New(
		app.WithDatasetPath(datasetPath),
		app.WithModel(model.Options{Path: forestPath}),
		app.WithKDEGridSize(8),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	Convey("Given a running dashboard", t, func() {
		out, _, err := run("probe", "--url", srv.URL, "--requests", "30", "--workers", "3", "--invalid-every", "10")

		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "PASS")
		So(out, ShouldContainSubstring, "rejected (expected)")
	})
}
