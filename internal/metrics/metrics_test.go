package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HamletTheHamster/xray-flare-loops/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestRecorder(t *testing.T) {
	convey.Convey("Given a recorder for a decay run", t, func() {
		reg := prometheus.NewRegistry()
		r := metrics.New("decayfit", "run-1", metrics.WithRegistry(reg), metrics.WithNamespace("test"))

		r.Fit("ok", 2*time.Millisecond)
		r.Fit("ok", 3*time.Millisecond)
		r.Fit("no_convergence", time.Millisecond)
		r.Dropped("missing_sector", 2)
		r.EFold(12)
		r.Value("r315", -1.3)

		convey.Convey("Then outcomes are counted by status", func() {
			convey.So(testutil.CollectAndCount(reg, "test_fits_total"), convey.ShouldEqual, 2)

			fits, err := reg.Gather()
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(fits), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("Then the textfile holds every metric", func() {
			path := filepath.Join(t.TempDir(), "out", "metrics.prom")
			convey.So(r.WriteTextfile(path), convey.ShouldBeNil)

			b, err := os.ReadFile(path)
			convey.So(err, convey.ShouldBeNil)
			text := string(b)
			convey.So(text, convey.ShouldContainSubstring, `test_fits_total{command="decayfit",run_id="run-1",status="ok"} 2`)
			convey.So(text, convey.ShouldContainSubstring, `test_dropped_rows_total{command="decayfit",reason="missing_sector",run_id="run-1"} 2`)
			convey.So(text, convey.ShouldContainSubstring, `test_value{command="decayfit",name="r315",run_id="run-1"} -1.3`)
			convey.So(strings.Contains(text, "test_last_run_timestamp_seconds"), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given two recorders without a shared registry", t, func() {
		a := metrics.New("ffd", "a")
		b := metrics.New("ffd", "b")
		convey.So(a.Registry(), convey.ShouldNotEqual, b.Registry())
	})
}
