package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/churnboard/internal/adapters/http/api"
	"github.com/okian/churnboard/internal/adapters/http/site"
	"github.com/okian/churnboard/internal/adapters/http/swagger"
	"github.com/okian/churnboard/internal/adapters/model"
	app "github.com/okian/churnboard/internal/app"
	"github.com/okian/churnboard/internal/config"
	"github.com/okian/churnboard/pkg/logger"
	"github.com/okian/churnboard/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When updating system metrics", func() {
			updateSystemMetrics()

			convey.Convey("Then the goroutine gauge is populated", func() {
				n, err := testutil.GatherAndCount(metrics.GetRegistry(), "churn_dashboard_system_goroutine_count")
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given configuration pointing at the fixtures", t, func() {
		t.Setenv("CHURN_DATASET_PATH", "../internal/adapters/dataset/testdata/hr_sample.csv")
		t.Setenv("CHURN_MODEL_PATH", "../internal/adapters/model/testdata/forest.json")
		t.Setenv("CHURN_KDE_GRID_SIZE", "16")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		svc := app.New(
			app.WithDatasetPath(cfg.DatasetPath),
			app.WithModel(model.Options{Path: cfg.ModelPath, Format: cfg.ModelFormat}),
			app.WithKDEGridSize(cfg.KDEGridSize),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		swagger.Register(ctx, mux)
		site.Register(ctx, mux)
		api.NewServer(svc, svc).Register(ctx, mux)

		convey.Convey("Then every surface answers", func() {
			for _, path := range []string{"/", "/stats", "/healthz", "/openapi.yaml", "/api-docs", "/assets/dashboard.css"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		t.Setenv("CHURN_ADDR", "")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(cfg, convey.ShouldBeNil)
	})
}
