package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/churnboard/internal/adapters/http/api"
	"github.com/okian/churnboard/internal/adapters/model"
	service "github.com/okian/churnboard/internal/app"
	"github.com/okian/churnboard/internal/domain/employee"
	"github.com/okian/churnboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(
		service.WithDatasetPath("../adapters/dataset/testdata/hr_sample.csv"),
		service.WithModel(model.Options{Path: "../adapters/model/testdata/forest.json"}),
		service.WithKDEGridSize(8),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := &Config{Requests: 50, Seed: 7, InvalidEvery: 10}
		a := Generate(cfg)
		b := Generate(cfg)

		Convey("Then equal seeds give equal inputs", func() {
			So(a, ShouldResemble, b)
		})

		Convey("And every valid input is within the form ranges", func() {
			var invalid int
			for _, c := range a {
				if !c.Valid {
					invalid++
					So(c.Input.Salary, ShouldEqual, invalidTier)
					continue
				}
				So(c.Input.Validate(), ShouldBeNil)
			}
			So(invalid, ShouldEqual, 5)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a response whose verdict contradicts its label", t, func() {
		svc := service.New(
			service.WithDatasetPath("../adapters/dataset/testdata/hr_sample.csv"),
			service.WithModel(model.Options{Path: "../adapters/model/testdata/forest.json"}),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		out, err := svc.Predict(context.Background(), employee.DefaultInput())
		So(err, ShouldBeNil)

		resp := &api.PredictResponse{
			Label:    int(out.Label),
			Verdict:  out.Verdict,
			Columns:  make([]string, 9),
			Features: out.Features.Slice(),
			Insight:  out.Insight,
		}
		So(Verify(resp), ShouldBeNil)

		resp.Verdict = "No Churn"
		So(errors.Is(Verify(resp), ErrInconsistent), ShouldBeTrue)
	})
}

func TestRun(t *testing.T) {
	srv := newServer(t)

	Convey("Given a running dashboard", t, func() {
		cfg := &Config{
			BaseURL:      srv.URL,
			Requests:     40,
			Workers:      4,
			Timeout:      5 * time.Second,
			Seed:         42,
			InvalidEvery: 8,
		}
		stats, err := Run(context.Background(), cfg)

		Convey("Then every request is answered consistently", func() {
			So(err, ShouldBeNil)
			So(stats.OK(), ShouldBeTrue)
			So(stats.Submitted, ShouldEqual, 40)
			So(stats.Rejected, ShouldEqual, 5)
			So(stats.Succeeded, ShouldEqual, 35)
			So(stats.Churn+stats.NoChurn, ShouldEqual, 35)
		})
	})

	Convey("Given nothing listening", t, func() {
		_, err := Run(context.Background(), &Config{BaseURL: "http://127.0.0.1:1", Requests: 1, Timeout: time.Second})
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}
