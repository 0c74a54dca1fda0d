package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hoofprint/hoofprint/internal/adapters/http/api"
	app "github.com/hoofprint/hoofprint/internal/app"
	"github.com/hoofprint/hoofprint/internal/config"
	"github.com/hoofprint/hoofprint/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("HOOFPRINT_ADDR", ":8080")
			_ = os.Setenv("HOOFPRINT_DEBOUNCE_MS", "500")
			_ = os.Setenv("HOOFPRINT_TRAIL_BATCH_SIZE", "4")
			defer func() {
				_ = os.Unsetenv("HOOFPRINT_ADDR")
				_ = os.Unsetenv("HOOFPRINT_DEBOUNCE_MS")
				_ = os.Unsetenv("HOOFPRINT_TRAIL_BATCH_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DebounceMS, convey.ShouldEqual, 500)
				convey.So(cfg.TrailBatchSize, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing coordinator creation", func() {
			convey.Convey("Then it should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And it should be creatable with custom options", func() {
				svc := app.New(
					app.WithTrailBatchSize(4),
					app.WithRegistrationBatchSize(16),
					app.WithDebounceWindow(500*time.Millisecond),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then the API server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then a metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry, registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing the service metrics updater", func() {
			svc := app.New()
			err := svc.Start(context.Background())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it should run until its context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})

			convey.Convey("And a single update pass should not panic", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}
