package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/model"
	"github.com/herptrack/herptrack/internal/schedule"
)

const careMetricsSubject = "metrics.care"

// TaskLister supplies the snapshot a metrics collection runs over
type TaskLister interface {
	ListTasksWithLogs(ctx context.Context) ([]model.TaskWithLogs, error)
}

// CareMetrics is the payload published on every collection cycle
type CareMetrics struct {
	Timestamp    time.Time `json:"timestamp"`
	ActiveTasks  int       `json:"active_tasks"`
	OverdueTasks int       `json:"overdue_tasks"`
	Reliability  int       `json:"reliability"`
	CPUUsage     float64   `json:"cpu_usage"`
	MemoryUsage  float64   `json:"memory_usage"`
}

// CareMetricsCollector periodically derives adherence metrics from the
// store and publishes them alongside host stats
type CareMetricsCollector struct {
	logger   *zap.Logger
	js       nats.JetStreamContext
	store    TaskLister
	clock    schedule.Clock
	loc      *time.Location
	interval time.Duration
	stop     chan struct{}
}

// NewCareMetricsCollector creates a new care metrics collector
func NewCareMetricsCollector(js nats.JetStreamContext, store TaskLister, clock schedule.Clock, loc *time.Location, interval time.Duration, logger *zap.Logger) *CareMetricsCollector {
	if loc == nil {
		loc = time.Local
	}
	return &CareMetricsCollector{
		logger:   logger.Named("care-metrics"),
		js:       js,
		store:    store,
		clock:    clock,
		loc:      loc,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start ensures the metrics stream exists and starts the collection loop
func (c *CareMetricsCollector) Start(ctx context.Context) error {
	stream, err := c.js.StreamInfo("METRICS")
	if err != nil && err != nats.ErrStreamNotFound {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	if stream == nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     "METRICS",
			Subjects: []string{"metrics.*"},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	c.logger.Info("Starting care metrics collector",
		zap.Duration("interval", c.interval))

	go c.collectLoop(ctx)
	return nil
}

// Stop stops the collection loop
func (c *CareMetricsCollector) Stop() {
	c.logger.Info("Stopping care metrics collector")
	close(c.stop)
}

func (c *CareMetricsCollector) collectLoop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.collect(ctx); err != nil {
				c.logger.Error("Failed to collect care metrics", zap.Error(err))
			}
		}
	}
}

// Collect derives one metrics sample and publishes it
func (c *CareMetricsCollector) Collect(ctx context.Context) (*CareMetrics, error) {
	items, err := c.store.ListTasksWithLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	now := c.clock.Now()
	metrics := &CareMetrics{
		Timestamp:   now,
		Reliability: schedule.Score(items, schedule.DefaultWindowDays, now),
	}
	for _, it := range items {
		if !it.Task.Active {
			continue
		}
		metrics.ActiveTasks++
		if schedule.Classify(it.Task.NextDueAt, now, c.loc) == schedule.BucketOverdue {
			metrics.OverdueTasks++
		}
	}

	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		metrics.CPUUsage = cpuPercent[0]
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		metrics.MemoryUsage = memInfo.UsedPercent
	}

	return metrics, nil
}

func (c *CareMetricsCollector) collect(ctx context.Context) error {
	metrics, err := c.Collect(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if _, err := c.js.Publish(careMetricsSubject, data); err != nil {
		return fmt.Errorf("failed to publish metrics: %w", err)
	}

	c.logger.Debug("Care metrics collected",
		zap.Int("active_tasks", metrics.ActiveTasks),
		zap.Int("overdue_tasks", metrics.OverdueTasks),
		zap.Int("reliability", metrics.Reliability))
	return nil
}
