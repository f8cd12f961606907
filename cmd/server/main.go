package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/event"
	"github.com/herptrack/herptrack/internal/model"
	"github.com/herptrack/herptrack/internal/monitor"
	"github.com/herptrack/herptrack/internal/reminder"
	"github.com/herptrack/herptrack/internal/schedule"
	"github.com/herptrack/herptrack/internal/storage"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		logger.Fatal("Failed to read config file", zap.Error(err))
	}

	loc := time.Local
	if tz := viper.GetString("schedule.timezone"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			logger.Fatal("Failed to load timezone",
				zap.String("timezone", tz),
				zap.Error(err))
		}
	}

	// Open the care database
	store, err := storage.NewSQLiteStore(logger, viper.GetString("database.path"))
	if err != nil {
		logger.Fatal("Failed to open care database", zap.Error(err))
	}
	defer store.Close()

	// Connect to NATS with more options
	opts := []nats.Option{
		nats.Name(viper.GetString("app.name")),
		nats.MaxReconnects(viper.GetInt("nats.max_reconnects")),
		nats.ReconnectWait(viper.GetDuration("nats.reconnect_wait")),
		nats.Timeout(viper.GetDuration("nats.connect_timeout")),
		nats.PingInterval(20 * time.Second),
		nats.MaxPingsOutstanding(5),
		nats.DrainTimeout(30 * time.Second),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS connection error",
				zap.String("subject", sub.Subject),
				zap.Error(err))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected",
				zap.String("url", nc.ConnectedUrl()))
		}),
	}

	// Connect with retry
	var nc *nats.Conn
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		nc, err = nats.Connect(viper.GetString("nats.urls.0"), opts...)
		if err == nil {
			break
		}
		logger.Warn("Failed to connect to NATS, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(time.Second * time.Duration(i+1))
	}
	if err != nil {
		logger.Fatal("Failed to connect to NATS after retries", zap.Error(err))
	}
	defer nc.Close()

	logger.Info("Connected to NATS successfully",
		zap.String("url", nc.ConnectedUrl()))

	// Create JetStream context
	js, err := nc.JetStream()
	if err != nil {
		logger.Fatal("Failed to create JetStream context", zap.Error(err))
	}

	// Care event stream
	publisher, err := event.NewPublisher(js, logger)
	if err != nil {
		logger.Fatal("Failed to create event publisher", zap.Error(err))
	}

	clock := schedule.SystemClock()
	svc := schedule.NewService(store, clock, loc, publisher, logger)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	// Reminder scanner
	scanner := reminder.NewScanner(store, clock, loc, publisher,
		viper.GetString("reminder.cron"), logger)
	if err := scanner.Start(); err != nil {
		logger.Fatal("Failed to start reminder scanner", zap.Error(err))
	}
	defer scanner.Stop()

	// Care metrics collection
	collector := monitor.NewCareMetricsCollector(js, store, clock, loc,
		viper.GetDuration("metrics.interval"), logger)
	if err := collector.Start(ctx); err != nil {
		logger.Fatal("Failed to start care metrics collector", zap.Error(err))
	}
	defer collector.Stop()

	// Alerting on top of the metrics stream
	alertManager := monitor.NewAlertManager(logger, js)
	if err := alertManager.Start(ctx); err != nil {
		logger.Fatal("Failed to start alert manager", zap.Error(err))
	}
	defer alertManager.Stop()

	defaultRules := []*model.AlertRule{
		{
			Name:      "overdue tasks",
			Type:      model.AlertTypeTaskOverdue,
			Threshold: viper.GetFloat64("alerts.overdue_threshold"),
			Severity:  model.AlertSeverityWarning,
		},
		{
			Name:      "reliability drop",
			Type:      model.AlertTypeReliabilityDrop,
			Threshold: viper.GetFloat64("alerts.reliability_threshold"),
			Severity:  model.AlertSeverityCritical,
		},
	}
	for _, rule := range defaultRules {
		if rule.Threshold <= 0 {
			continue
		}
		if err := alertManager.AddRule(rule); err != nil {
			logger.Error("Failed to add alert rule",
				zap.String("name", rule.Name),
				zap.Error(err))
		}
	}

	// Log a schedule snapshot so operators see the state on boot
	if overview, err := svc.Overview(ctx); err != nil {
		logger.Error("Failed to build schedule overview", zap.Error(err))
	} else {
		logger.Info("Schedule overview",
			zap.Int("overdue", len(overview.Buckets[schedule.BucketOverdue])),
			zap.Int("reliability", overview.Reliability))
	}

	logger.Info("Server started",
		zap.String("timezone", loc.String()),
		zap.String("database", viper.GetString("database.path")))

	// Wait for shutdown signal
	<-ctx.Done()

	logger.Info("Server shutting down gracefully")
}
