package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func findFamily(reg *prometheus.Registry, name string) *dto.MetricFamily {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.jobsLoaded.Set(3)

			Convey("Then collectors are registered under the new names", func() {
				f := findFamily(registry, "test_unit_jobs_loaded")
				So(f, ShouldNotBeNil)
				So(f.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 3)
				So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
			})
		})

		Convey("When empty options are given", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "recrai")
				So(m.subsystem, ShouldEqual, "matcher")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		reg := GetRegistry()

		Convey("When recording fit computations", func() {
			RecordFitComputation("substring", 67)
			RecordFitComputation("token", 100)

			Convey("Then the counter is split by mode", func() {
				f := findFamily(reg, "recrai_matcher_fit_computations_total")
				So(f, ShouldNotBeNil)
				So(len(f.GetMetric()), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When recording the remaining series", func() {
			So(func() {
				RecordRankingLatency("job", 1.2)
				UpdateCatalogue(2, 5)
				UpdateHiddenCandidates(1)
				RecordUpstreamRequest("/cvs", "ok", 12)
				RecordUpstreamRetry()
				UpdateQueueSize(3, 10)
				RecordQueueRejected("queue_full")
				UpdateWorkerCount(4)
				AddWorkerActive(1)
				AddWorkerActive(-1)
				RecordWorkerTask()
				RecordHTTPRequest("/jobs", "GET", "200")
				RecordHTTPRequestDuration("/jobs", "GET", "200", 3)
				RecordErrorByComponent("recruitapi", "retryable")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
			}, ShouldNotPanic)

			Convey("Then gauges hold the last value", func() {
				f := findFamily(reg, "recrai_matcher_candidates_loaded")
				So(f.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 5)
				f = findFamily(reg, "recrai_matcher_worker_count")
				So(f.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 4)
			})
		})
	})
}
