package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dots/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DefaultStake, convey.ShouldEqual, 0.25)
				convey.So(cfg.Itemization, convey.ShouldEqual, "split")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DOTS_ADDR", ":8080")
			_ = os.Setenv("DOTS_DEFAULT_STAKE", "0.5")
			_ = os.Setenv("DOTS_ITEMIZATION", "undivided")
			_ = os.Setenv("DOTS_MAX_SEGMENTS", "4")
			_ = os.Setenv("DOTS_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
			_ = os.Setenv("DOTS_METRICS_REFRESH_INTERVAL", "30s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DefaultStake, convey.ShouldEqual, 0.5)
				convey.So(cfg.Itemization, convey.ShouldEqual, "undivided")
				convey.So(cfg.MaxSegments, convey.ShouldEqual, 4)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
				convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# house rules
addr: ":9090"  # inline comment
default_stake: 1
non_finite: zero
category_points:
  birdie: 2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DOTS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DefaultStake, convey.ShouldEqual, 1)
				convey.So(cfg.NonFinite, convey.ShouldEqual, "zero")
			})

			convey.Convey("And unspecified category points keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CategoryPoints["birdie"], convey.ShouldEqual, 2)
				convey.So(cfg.CategoryPoints["low_man"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When env and file both set a key", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nmin_segments: 1\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DOTS_CONFIG", tmpFile)
			_ = os.Setenv("DOTS_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MinSegments, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("DOTS_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded values are invalid", func() {
			_ = os.Setenv("DOTS_ADDR", "")
			_ = os.Setenv("DOTS_DEFAULT_STAKE", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects them", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cancelled)

			convey.Convey("Then nothing is loaded", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLoadEnvFiles(t *testing.T) {
	convey.Convey("Given a .env file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		convey.So(os.WriteFile(path, []byte("DOTS_ITEMIZATION=undivided\nDOTS_ADDR=:6060\n"), 0o600), convey.ShouldBeNil)
		_ = os.Setenv("DOTS_ADDR", ":5050")
		defer clearConfigEnvVars()

		convey.Convey("When it is loaded alongside a missing file", func() {
			err := config.LoadEnvFiles(filepath.Join(dir, "missing.env"), path)

			convey.Convey("Then unset variables are filled and set ones are kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(os.Getenv("DOTS_ITEMIZATION"), convey.ShouldEqual, "undivided")
				convey.So(os.Getenv("DOTS_ADDR"), convey.ShouldEqual, ":5050")

				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Itemization, convey.ShouldEqual, "undivided")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"DOTS_CONFIG",
		"DOTS_ADDR",
		"DOTS_DEFAULT_STAKE",
		"DOTS_ITEMIZATION",
		"DOTS_NON_FINITE",
		"DOTS_MAX_SEGMENTS",
		"DOTS_CORS_ALLOWED_ORIGINS",
		"DOTS_METRICS_REFRESH_INTERVAL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "dots-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
