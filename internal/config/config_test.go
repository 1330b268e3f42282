package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/churnboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "data/hr_employee_churn_data.csv")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ModelFormat, convey.ShouldEqual, config.ModelFormatAuto)
			convey.So(cfg.KDEGridSize, convey.ShouldEqual, 200)
			convey.So(cfg.PlotWidthIn, convey.ShouldEqual, 10)
			convey.So(cfg.PlotHeightIn, convey.ShouldEqual, 4)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with broken fields", t, func() {
		ctx := context.Background()

		convey.Convey("When the model format is unknown", func() {
			cfg := config.New(ctx)
			cfg.ModelFormat = "pickle"
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "model_format")
		})

		convey.Convey("When several fields are wrong", func() {
			cfg := config.New(ctx)
			cfg.DatasetPath = " "
			cfg.KDEGridSize = 1
			cfg.PlotHeightIn = 0
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "dataset_path must not be empty")
			convey.So(err.Error(), convey.ShouldContainSubstring, "kde_grid_size")
			convey.So(err.Error(), convey.ShouldContainSubstring, "plot size")
		})

		convey.Convey("When the format is given in upper case", func() {
			cfg := config.New(ctx)
			cfg.ModelFormat = "ONNX"
			cfg.LogFormat = "JSON"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
