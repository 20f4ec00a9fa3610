package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relative_photometer/internal/handlers"
	"relative_photometer/internal/logger"
	"relative_photometer/internal/repository"
	"relative_photometer/internal/repository/db"
	"relative_photometer/internal/sensor"
	"relative_photometer/internal/server"
	"relative_photometer/internal/service"

	_ "relative_photometer/docs"

	"github.com/spf13/viper"
)

const defaultSigningKey = "change-me-in-config"

// @title        Relative Photometer Station API
// @version      1.0
// @description  Ingests bound frames from a relative photometer and serves running illuminance estimates.
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	// load config.yml before the logger so log.level applies from the start
	cfgErr := loadConfig()

	log := logger.Get(logLevel())
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open DB
	sqldb, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqldb.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// frame source: physical sensor bus if configured, synthetic otherwise
	source, closeSource, err := openSource(log)
	if err != nil {
		log.Fatalw("failed to open sensor source", "err", err)
	}
	defer closeSource()

	// wire dependencies
	repos := repository.NewRepository(sqldb)
	services := service.NewService(repos, service.Deps{
		Source:     source,
		SigningKey: signingKey(),
		Log:        log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the sensor feed
	go services.Feed.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "station.db")
		dbPath = "station.db"
	}
	return db.InitDB(dbPath)
}

// openSource selects the configured serial port or falls back to the
// synthetic generator so the station runs without hardware attached.
func openSource(log *logger.Logger) (service.FrameSource, func(), error) {
	if portName := viper.GetString("sensor.port"); portName != "" {
		port, err := sensor.OpenPort(portName, viper.GetInt("sensor.baud"))
		if err != nil {
			return nil, nil, err
		}
		log.Infow("reading frames from serial port", "port", portName)
		return port, func() { _ = port.Close() }, nil
	}

	interval := viper.GetDuration("sensor.interval")
	log.Infow("no sensor.port configured; using synthetic frames", "interval", interval)
	return sensor.NewSynthetic(interval, time.Now().UnixNano()), func() {}, nil
}

func logLevel() string {
	if lvl := viper.GetString("log.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

func signingKey() string {
	if k := viper.GetString("auth.signing_key"); k != "" {
		return k
	}
	return defaultSigningKey
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
