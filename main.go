package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/envelope-zero/ledger/pkg/config"
	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/notify"
	"github.com/envelope-zero/ledger/pkg/router"
	"github.com/envelope-zero/ledger/pkg/scheduler"
	"github.com/envelope-zero/ledger/pkg/tracing"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// This is set at build time, see Makefile.
var version = "0.0.0"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration")
	}

	// gin uses debug as the default mode, we use release for
	// security reasons
	gin.SetMode(cfg.GinMode)

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	output := io.Writer(os.Stdout)
	if (cfg.LogFormat == "" && gin.IsDebugging()) || cfg.LogFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, "ledger", version, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Tracing")
	}

	d, err := dialector(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Database")
	}

	db, err := models.Connect(d)
	if err != nil {
		log.Fatal().Err(err).Msg("Database")
	}

	notifier, closers, err := notifiers(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Notifications")
	}

	currency, err := cfg.LedgerCurrency()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration")
	}

	engine := ledger.NewEngine(ledger.NewStore(db, ledger.StoreOptions{
		Notifier:  notifier,
		NotifyURI: cfg.NotifyURI,
	}))

	// Migrate all models so that the schema is correct
	_, err = ledger.Migrate(ctx, engine, cfg.DefaultEnvelopes)
	if err != nil {
		log.Fatal().Err(err).Msg("Database migration")
	}

	r, teardown, err := router.Config(&cfg.APIURL, router.Options{
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		EnablePprof:      cfg.EnablePprof,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Router")
	}
	defer teardown()

	router.AttachRoutes(r.Group(cfg.APIURL.Path), controllers.Controller{
		Engine:   engine,
		Currency: currency,
	}, version)

	go func() {
		_ = scheduler.New(engine, cfg.ReplayInterval).Run(ctx)
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("version", version).Str("port", cfg.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("Closing notifier")
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracing shutdown")
	}
}

// dialector returns the gorm dialector for the configured database.
func dialector(cfg config.Config) (gorm.Dialector, error) {
	if cfg.DBDriver == "mysql" {
		return mysql.Open(cfg.DBDSN), nil
	}

	// Create data directory
	path, _, _ := strings.Cut(cfg.DBDSN, "?")
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}

	return sqlite.Open(cfg.DBDSN), nil
}

// notifiers sets up all configured message brokers.
func notifiers(ctx context.Context, cfg config.Config) (notify.Notifier, []io.Closer, error) {
	var (
		multi   notify.Multi
		closers []io.Closer
	)

	if cfg.AMQPURL != "" {
		n, err := notify.NewAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, closers, err
		}
		multi = append(multi, n)
		closers = append(closers, n)
	}

	if len(cfg.KafkaBrokers) > 0 {
		n, err := notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, closers, err
		}
		multi = append(multi, n)
		closers = append(closers, n)
	}

	if cfg.RedisAddr != "" {
		n, err := notify.NewRedis(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return nil, closers, err
		}
		multi = append(multi, n)
		closers = append(closers, n)
	}

	if len(multi) == 0 {
		return notify.Nop{}, nil, nil
	}

	log.Info().Int("brokers", len(multi)).Msg("Ledger change notifications enabled")
	return multi, closers, nil
}
