/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the overtime engine server: configuration,
  logging, database, dependency wiring, graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, optional overtime.yaml, OT_* env vars)
  2. Build the zap logger
  3. Open the SQLite store
  4. Wire the engine and HTTP router
  5. Serve with graceful shutdown

CONFIGURATION KEYS (viper):
  server.port          HTTP port (default 8080)
  db.path              SQLite path, ":memory:" supported (default overtime.db)
  log.level            zap level (default info)
  log.format           "json" or "console" (default json)
  limits.max_ot_hours          monthly hard cap (default 104)
  limits.warning_threshold     Amber threshold (default 90)
  limits.max_session_hours     per-session cap (default 12)
  limits.min_rest_gap_hours    rest gap floor (default 4)
  limits.max_future_days       claim date horizon (default 7)
  limits.hours_per_leave_day   leave conversion divisor (default 6)
  limits.holiday_multiplier    (default 2)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain for up to 30s,
  close the database, exit.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/overtime-engine/api"
	"github.com/warp/overtime-engine/notify"
	"github.com/warp/overtime-engine/overtime"
	"github.com/warp/overtime-engine/store/sqlite"
)

func main() {
	v := viper.New()
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.path", "overtime.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("limits.max_ot_hours", 104)
	v.SetDefault("limits.warning_threshold", 90)
	v.SetDefault("limits.max_session_hours", 12)
	v.SetDefault("limits.min_rest_gap_hours", 4)
	v.SetDefault("limits.max_future_days", 7)
	v.SetDefault("limits.hours_per_leave_day", 6)
	v.SetDefault("limits.holiday_multiplier", 2)

	v.SetConfigName("overtime")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("OT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := newLogger(v.GetString("log.level"), v.GetString("log.format"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(v.GetString("db.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	engine := overtime.NewEngine(overtime.Dependencies{
		Staff:      store,
		Claims:     store,
		Attendance: store,
		Holidays:   store,
		Summaries:  store,
		Notifier:   notify.NewLog(logger),
		Audit:      store,
		Logger:     logger,
		Limits:     limitsFromConfig(v),
	})

	router := api.NewRouter(api.NewHandler(engine, store, logger))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", v.GetInt("server.port")),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", v.GetInt("server.port")),
			zap.String("db", v.GetString("db.path")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func limitsFromConfig(v *viper.Viper) overtime.Limits {
	return overtime.Limits{
		MaxOTHours:        decimal.NewFromFloat(v.GetFloat64("limits.max_ot_hours")),
		WarningThreshold:  decimal.NewFromFloat(v.GetFloat64("limits.warning_threshold")),
		MaxSessionHours:   decimal.NewFromFloat(v.GetFloat64("limits.max_session_hours")),
		MinRestGapHours:   decimal.NewFromFloat(v.GetFloat64("limits.min_rest_gap_hours")),
		MaxFutureDays:     v.GetInt("limits.max_future_days"),
		HoursPerLeaveDay:  decimal.NewFromFloat(v.GetFloat64("limits.hours_per_leave_day")),
		HolidayMultiplier: v.GetInt("limits.holiday_multiplier"),
	}
}
