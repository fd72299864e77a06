// Команда storeadmin запускает admin backend магазинов.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vladislavdragonenkov/storeadmin/internal/app"
	"github.com/vladislavdragonenkov/storeadmin/internal/version"
)

const (
	envLogLevel  = app.EnvPrefix + "LOG_LEVEL"
	envLogFormat = app.EnvPrefix + "LOG_FORMAT"
	envLogFile   = app.EnvPrefix + "LOG_FILE"
)

type logSettings struct {
	level  log.Level
	json   bool
	file   string
	errors []error
}

func readLogSettings(lookup func(string) (string, bool)) logSettings {
	settings := logSettings{level: log.InfoLevel}
	if v, ok := lookup(envLogLevel); ok && strings.TrimSpace(v) != "" {
		level, err := log.ParseLevel(strings.TrimSpace(v))
		if err != nil {
			settings.errors = append(settings.errors, err)
		} else {
			settings.level = level
		}
	}
	if v, ok := lookup(envLogFormat); ok {
		settings.json = strings.EqualFold(strings.TrimSpace(v), "json")
	}
	if v, ok := lookup(envLogFile); ok {
		settings.file = strings.TrimSpace(v)
	}
	return settings
}

// setupLogger настраивает формат, уровень и вывод логов. Файл ротируется через lumberjack.
func setupLogger(logger *log.Logger, settings logSettings) io.Closer {
	if settings.json {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	logger.SetLevel(settings.level)
	for _, err := range settings.errors {
		logger.WithError(err).Warn("invalid log setting, using default")
	}

	if settings.file == "" {
		logger.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}
	rotated := &lumberjack.Logger{
		Filename:   settings.file,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
	return rotated
}

func main() {
	closer := setupLogger(log.StandardLogger(), readLogSettings(os.LookupEnv))
	defer closer.Close()

	cfg, err := app.LoadConfig(".env")
	if err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":        version.String(),
		"http_addr":      cfg.HTTPAddr,
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"kafka_enabled":  len(cfg.Brokers()) > 0,
	}).Info("запускаем storeadmin")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("storeadmin остановлен")
}
