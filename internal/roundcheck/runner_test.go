package roundcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dots/internal/adapters/http/api"
	service "github.com/okian/dots/internal/app"
	"github.com/okian/dots/pkg/logger"
)

func newDotsServer() *httptest.Server {
	svc := service.New()
	srv := api.NewServer(svc, svc)
	mux := http.NewServeMux()
	srv.Register(mux)
	return httptest.NewServer(srv.Handler(mux))
}

func testConfig(url string) *Config {
	return &Config{BaseURL: url, Rounds: 30, Workers: 4, Timeout: 5 * time.Second, Seed: 7}
}

func TestRunAgainstService(t *testing.T) {
	Convey("Given a running dots service", t, func() {
		ts := newDotsServer()
		defer ts.Close()

		Convey("When a check run completes", func() {
			cfg := testConfig(ts.URL)
			cfg.OutputFile = filepath.Join(t.TempDir(), "out", "cases.json")

			stats, err := Run(context.Background(), cfg, logger.Nop())

			Convey("Then every case passes", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 30)
				So(stats.Submitted, ShouldEqual, 30)
				So(stats.Passed, ShouldEqual, 30)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Mismatch, ShouldEqual, 0)
			})

			Convey("And the generated cases are saved", func() {
				data, readErr := os.ReadFile(cfg.OutputFile)
				So(readErr, ShouldBeNil)
				var saved []Case
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 30)
			})
		})
	})
}

func TestRunFailures(t *testing.T) {
	Convey("Given a service that misbehaves", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("/v1/defaults", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"stake_per_point":0.25}`))
		})

		Convey("When settlements do not balance", func() {
			mux.HandleFunc("/v1/settlements/", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"net_results":[{"name":"x","total":1}]}`))
			})
			mux.HandleFunc("/v1/scoring/segment", func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			})
			ts := httptest.NewServer(mux)
			defer ts.Close()

			stats, err := Run(context.Background(), testConfig(ts.URL), logger.Nop())

			Convey("Then the run reports mismatches and failures", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
				So(stats.Mismatch, ShouldEqual, 20)
				So(stats.Failed, ShouldEqual, 10)
				So(stats.Passed, ShouldEqual, 0)
			})
		})

		Convey("When the health check fails", func() {
			failing := http.NewServeMux()
			failing.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})
			ts := httptest.NewServer(failing)
			defer ts.Close()

			stats, err := Run(context.Background(), testConfig(ts.URL), logger.Nop())

			Convey("Then nothing is submitted", func() {
				var statusErr *StatusError
				So(errors.As(err, &statusErr), ShouldBeTrue)
				So(statusErr.Status, ShouldEqual, http.StatusServiceUnavailable)
				So(stats.Submitted, ShouldEqual, 0)
			})
		})
	})
}
