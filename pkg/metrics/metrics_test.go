package metrics

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the collectors are registered on it", func() {
				So(manager, ShouldNotBeNil)
				manager.attemptsParsed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom naming options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("club"),
				WithSubsystem("pool"),
				WithMetricPrefix("test"),
				WithHistogramBuckets([]float64{1, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.sessionsAnalyzed.Inc()

			Convey("Then metric names carry the namespace, subsystem and prefix", func() {
				var buf bytes.Buffer
				So(writeText(&buf, registry), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "club_pool_test_sessions_analyzed_total")
				So(buf.String(), ShouldContainSubstring, `env="test"`)
			})
		})

		Convey("When empty options are supplied", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "swimstats")
				So(manager.subsystem, ShouldEqual, "engine")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording every kind of event", func() {
			So(func() {
				RecordAttemptParsed()
				RecordAttemptRejected("format")
				RecordAttemptSkipped()
				RecordSessionAnalyzed(0.4)
				RecordResultSubmitted()
				RecordResultRecorded(true)
				RecordResultRecorded(false)
				RecordSplitRejection("ordering")
				UpdateQueueCapacity(10)
				UpdateQueueSize(5, 10)
				UpdateQueueSize(0, 0)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueRejected()
				UpdateWorkerActiveCount(4)
				RecordWorkerProcessingLatency(1.5)
				RecordWorkerError()
				UpdateRankingEntries("free", 3)
				RecordRankingUpdateLatency(0.2)
				RecordRankingQueryLatency(0.1)
				RecordErrorByComponent("worker", "record_error")
			}, ShouldNotPanic)

			Convey("Then the text exposition contains them", func() {
				var buf bytes.Buffer
				So(WriteText(&buf), ShouldBeNil)
				out := buf.String()
				So(out, ShouldContainSubstring, "swimstats_engine_attempts_parsed_total")
				So(out, ShouldContainSubstring, `swimstats_engine_split_rejections_total{kind="ordering"}`)
				So(out, ShouldContainSubstring, `swimstats_engine_ranking_entries{style="free"} 3`)
				So(out, ShouldContainSubstring, "swimstats_engine_personal_bests_total")
			})
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled manager installed globally", t, func() {
		registry := prometheus.NewRegistry()
		previous := globalManager
		globalManager = NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))
		defer func() { globalManager = previous }()

		RecordAttemptParsed()
		RecordResultRecorded(true)

		Convey("Then nothing is observed", func() {
			var buf bytes.Buffer
			So(writeText(&buf, registry), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "swimstats_engine_attempts_parsed_total 0")
			So(buf.String(), ShouldContainSubstring, "swimstats_engine_personal_bests_total 0")
		})
	})
}

func TestSinceMs(t *testing.T) {
	Convey("Given a start time in the past", t, func() {
		start := time.Now().Add(-5 * time.Millisecond)
		So(SinceMs(start), ShouldBeGreaterThanOrEqualTo, 5.0)
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordAttemptParsed()
					RecordQueueEnqueue()
					RecordRankingQueryLatency(0.01)
				}
			}()
		}
		wg.Wait()
		So(GetRegistry(), ShouldNotBeNil)
	})
}
