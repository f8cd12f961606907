package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/model"
)

// AlertManager evaluates care metrics against alert rules and publishes
// alert events when thresholds are crossed
type AlertManager struct {
	logger *zap.Logger
	js     nats.JetStreamContext
	rules  sync.Map
	sub    *nats.Subscription
}

// NewAlertManager creates a new alert manager
func NewAlertManager(logger *zap.Logger, js nats.JetStreamContext) *AlertManager {
	return &AlertManager{
		logger: logger.Named("alert-manager"),
		js:     js,
	}
}

// Start ensures the alert stream exists and subscribes to care metrics
func (m *AlertManager) Start(ctx context.Context) error {
	stream, err := m.js.StreamInfo("ALERTS")
	if err != nil && err != nats.ErrStreamNotFound {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	if stream == nil {
		_, err = m.js.AddStream(&nats.StreamConfig{
			Name:     "ALERTS",
			Subjects: []string{"alert.*"},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	sub, err := m.js.Subscribe(careMetricsSubject, m.handleMetrics)
	if err != nil {
		return fmt.Errorf("failed to subscribe to care metrics: %w", err)
	}
	m.sub = sub

	m.logger.Info("Alert manager started")
	return nil
}

// Stop stops the alert manager
func (m *AlertManager) Stop() {
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
}

// GetRule returns a rule by ID
func (m *AlertManager) GetRule(id string) (*model.AlertRule, error) {
	value, ok := m.rules.Load(id)
	if !ok {
		return nil, fmt.Errorf("rule not found: %s", id)
	}
	return value.(*model.AlertRule), nil
}

// AddRule adds a new alert rule
func (m *AlertManager) AddRule(rule *model.AlertRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	m.rules.Store(rule.ID, rule)
	return nil
}

// DeleteRule deletes an alert rule
func (m *AlertManager) DeleteRule(id string) error {
	if _, ok := m.rules.Load(id); !ok {
		return fmt.Errorf("rule not found: %s", id)
	}
	m.rules.Delete(id)
	return nil
}

// handleMetrics evaluates every rule against a fresh metrics sample
func (m *AlertManager) handleMetrics(msg *nats.Msg) {
	var metrics CareMetrics
	if err := json.Unmarshal(msg.Data, &metrics); err != nil {
		m.logger.Error("Failed to unmarshal care metrics", zap.Error(err))
		return
	}

	m.rules.Range(func(key, value interface{}) bool {
		rule := value.(*model.AlertRule)
		if rule.Silenced {
			return true
		}

		if alert, triggered := Evaluate(rule, &metrics); triggered {
			if err := m.publishAlert(alert); err != nil {
				m.logger.Error("Failed to publish alert",
					zap.String("rule_id", rule.ID),
					zap.Error(err))
			}
		}
		return true
	})
}

// Evaluate checks one rule against one metrics sample. Overdue rules
// trigger when the overdue count exceeds the threshold; reliability
// rules trigger when the score drops below it.
func Evaluate(rule *model.AlertRule, metrics *CareMetrics) (*model.Alert, bool) {
	var triggered bool
	data := make(map[string]interface{})

	switch rule.Type {
	case model.AlertTypeTaskOverdue:
		triggered = float64(metrics.OverdueTasks) > rule.Threshold
		data["overdue_tasks"] = metrics.OverdueTasks
	case model.AlertTypeReliabilityDrop:
		triggered = float64(metrics.Reliability) < rule.Threshold
		data["reliability"] = metrics.Reliability
	}

	if !triggered {
		return nil, false
	}

	return &model.Alert{
		ID:        uuid.New().String(),
		RuleID:    rule.ID,
		Type:      rule.Type,
		Severity:  rule.Severity,
		Message:   fmt.Sprintf("Alert triggered for rule: %s", rule.Name),
		Data:      data,
		CreatedAt: metrics.Timestamp,
	}, true
}

func (m *AlertManager) publishAlert(alert *model.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	if _, err := m.js.Publish("alert."+string(alert.Type), data); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	m.logger.Info("Alert created",
		zap.String("id", alert.ID),
		zap.String("rule_id", alert.RuleID),
		zap.String("type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)))
	return nil
}
