package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/dots/internal/config"
	"github.com/okian/dots/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DOTS_CONFIG", "DOTS_ADDR", "DOTS_LOG_LEVEL", "DOTS_DEFAULT_STAKE",
		"DOTS_ITEMIZATION", "DOTS_NON_FINITE", "DOTS_MIN_SEGMENTS", "DOTS_MAX_SEGMENTS",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadConfig(t *testing.T) {
	convey.Convey("Given the command line and environment", t, func() {
		isolateEnv(t)

		convey.Convey("When only environment variables are set", func() {
			t.Setenv("DOTS_ADDR", ":8181")
			t.Setenv("DOTS_ITEMIZATION", "undivided")

			cfg, err := loadConfig(context.Background(), cli{})

			convey.Convey("Then they are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
				convey.So(cfg.Itemization, convey.ShouldEqual, "undivided")
			})
		})

		convey.Convey("When flags are given", func() {
			t.Setenv("DOTS_ADDR", ":8181")

			cfg, err := loadConfig(context.Background(), cli{Addr: ":7070", LogLevel: "debug"})

			convey.Convey("Then flags override the environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When a config file and dotenv file are given", func() {
			dir := t.TempDir()
			cfgPath := filepath.Join(dir, "dots.yaml")
			envPath := filepath.Join(dir, ".env")
			convey.So(os.WriteFile(cfgPath, []byte("default_stake: 1.5\nmax_segments: 2\n"), 0o600), convey.ShouldBeNil)
			convey.So(os.WriteFile(envPath, []byte("DOTS_NON_FINITE=zero\n"), 0o600), convey.ShouldBeNil)

			cfg, err := loadConfig(context.Background(), cli{Config: cfgPath, EnvFile: []string{envPath}})
			_ = os.Unsetenv("DOTS_NON_FINITE")

			convey.Convey("Then both are layered in", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DefaultStake, convey.ShouldEqual, 1.5)
				convey.So(cfg.MaxSegments, convey.ShouldEqual, 2)
				convey.So(cfg.NonFinite, convey.ShouldEqual, "zero")
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("DOTS_DEFAULT_STAKE", "-1")

			cfg, err := loadConfig(context.Background(), cli{})

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := config.New()

		convey.Convey("When building the service from it", func() {
			cfg.Itemization = "undivided"
			cfg.NonFinite = "zero"
			cfg.DefaultStake = 2
			cfg.MaxSegments = 2

			svc, err := buildService(cfg, logger.Nop())

			convey.Convey("Then the policies reach the service", func() {
				convey.So(err, convey.ShouldBeNil)
				stats := svc.GetStats()
				convey.So(stats["itemization"], convey.ShouldEqual, "undivided")
				convey.So(stats["nonFinite"], convey.ShouldEqual, "zero")
				convey.So(stats["defaultStake"], convey.ShouldEqual, 2.0)
				convey.So(stats["maxSegments"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When category points are overridden", func() {
			cfg.CategoryPoints = map[string]float64{"low_man": 3}
			cfg.SweepMultiplier = 3

			svc, err := buildService(cfg, logger.Nop())

			convey.Convey("Then the scorer uses them", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the itemization is unknown", func() {
			cfg.Itemization = "sideways"

			svc, err := buildService(cfg, logger.Nop())

			convey.Convey("Then it is reported as invalid config", func() {
				convey.So(svc, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a category name is unknown", func() {
			cfg.CategoryPoints = map[string]float64{"eagle": 4}

			_, err := buildService(cfg, logger.Nop())

			convey.Convey("Then it is reported as invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestNewHTTPServer(t *testing.T) {
	convey.Convey("Given the assembled HTTP server", t, func() {
		cfg := config.New()
		cfg.CORSAllowedOrigins = []string{"https://dots.example"}
		svc, err := buildService(cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		srv := newHTTPServer(cfg, svc, logger.Nop())

		convey.Convey("Then it listens on the configured address", func() {
			convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)
			convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
		})

		convey.Convey("And it settles a round end to end", func() {
			body := `{"stake_per_point":1,"players":[{"name":"A","points":10},{"name":"B","points":6}]}`
			req := httptest.NewRequest(http.MethodPost, "/v1/settlements/individual", strings.NewReader(body))
			req.Header.Set("Origin", "https://dots.example")
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "https://dots.example")
			convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)

			var out struct {
				Settlements []struct {
					From   string  `json:"from"`
					To     string  `json:"to"`
					Amount float64 `json:"amount"`
				} `json:"settlements"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &out), convey.ShouldBeNil)
			convey.So(out.Settlements, convey.ShouldHaveLength, 1)
			convey.So(out.Settlements[0].From, convey.ShouldEqual, "B")
			convey.So(out.Settlements[0].To, convey.ShouldEqual, "A")
			convey.So(out.Settlements[0].Amount, convey.ShouldEqual, 4.0)
		})

		convey.Convey("And it serves the API docs", func() {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a runnable service", t, func() {
		isolateEnv(t)
		convey.So(logger.Init(), convey.ShouldBeNil)

		convey.Convey("When the context is cancelled after start", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			err := run(ctx, cli{Addr: "127.0.0.1:0"})

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := run(ctx, cli{})

			convey.Convey("Then configuration loading reports it", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}
