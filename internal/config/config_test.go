package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/swimstats/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.OnTargetTolerance, convey.ShouldEqual, 1.0)
			convey.So(cfg.StrictSeconds, convey.ShouldBeFalse)
			convey.So(cfg.MaxTopN, convey.ShouldEqual, 100)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out-of-range values", t, func() {
		mutations := map[string]func(*config.Config){
			"log level":  func(c *config.Config) { c.LogLevel = "loud" },
			"log format": func(c *config.Config) { c.LogFormat = "xml" },
			"queue size": func(c *config.Config) { c.QueueSize = 0 },
			"workers":    func(c *config.Config) { c.WorkerCount = -1 },
			"dedupe":     func(c *config.Config) { c.DedupeSize = -1 },
			"tolerance":  func(c *config.Config) { c.OnTargetTolerance = 0 },
			"top n":      func(c *config.Config) { c.MaxTopN = 0 },
		}
		for name, mutate := range mutations {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(name, convey.ShouldNotBeEmpty)
		}
	})

	convey.Convey("Given an unbounded dedupe registry", t, func() {
		cfg := config.New(context.Background())
		cfg.DedupeSize = 0
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
