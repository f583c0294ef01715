package scada

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/metrics"
	"webscada.dev/scada-core-service/pkg/models"
)

type AckOutcome string

const (
	AckOutcomeAcknowledged AckOutcome = "acknowledged"
	AckOutcomeNotActive    AckOutcome = "not_active"
)

type AckResult struct {
	Outcome AckOutcome         `json:"outcome"`
	Event   *models.AlarmEvent `json:"event,omitempty"`
}

type ClearOutcome string

const (
	ClearOutcomeCleared        ClearOutcome = "cleared"
	ClearOutcomeAlreadyCleared ClearOutcome = "already_cleared"
)

type ClearResult struct {
	Outcome ClearOutcome       `json:"outcome"`
	Event   *models.AlarmEvent `json:"event,omitempty"`
}

// alarmContext carries the names an alarm event is announced with.
type alarmContext struct {
	Tag       models.Tag
	Device    models.Device
	ProjectID string
}

func (s *SCADA) getAlarmContext(tagID string) (*alarmContext, error) {
	var tag models.Tag
	if err := s.Db.Conn.First(&tag, "id = ?", tagID).Error; err != nil {
		return nil, fmt.Errorf("alarm context: tag %s: %w", tagID, err)
	}
	var device models.Device
	if err := s.Db.Conn.First(&device, "id = ?", tag.DeviceID).Error; err != nil {
		return nil, fmt.Errorf("alarm context: device %s: %w", tag.DeviceID, err)
	}
	return &alarmContext{Tag: tag, Device: device, ProjectID: device.ProjectID}, nil
}

// evaluate runs every enabled rule on the tag against the measurement.
// A failure on one rule is logged and does not stop the others.
func (s *SCADA) evaluate(tagID string, measurement *models.Measurement) error {
	var rules []models.AlarmRule
	err := s.Db.Conn.
		Where("tag_id = ? AND enabled = ?", tagID, true).
		Order("id asc").
		Find(&rules).Error
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}

	logger := common.GetLoggerWith(
		common.LoggerNameScadaCore,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryAlarm),
	)

	ctx, err := s.getAlarmContext(tagID)
	if err != nil {
		return err
	}

	for i := range rules {
		if err := s.evaluateRule(&rules[i], ctx, measurement); err != nil {
			metrics.IncMeasurementError("evaluate")
			logger.Warn("Rule evaluation failed",
				zap.String("rule_id", rules[i].ID), zap.Error(err))
		}
	}
	return nil
}

func (s *SCADA) evaluateRule(rule *models.AlarmRule, ctx *alarmContext, measurement *models.Measurement) error {
	lock := s.ruleLocks.get(rule.ID)
	lock.Lock()
	defer lock.Unlock()

	logger := common.GetLoggerWith(
		common.LoggerNameScadaCore,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryAlarm),
	)

	satisfied := rule.Comparator.Satisfied(measurement.Value, rule.Threshold)

	var active models.AlarmEvent
	err := s.Db.Conn.
		Where("rule_id = ? AND state IN ?", rule.ID,
			[]models.AlarmState{models.AlarmStateTriggered, models.AlarmStateAcknowledged}).
		First(&active).Error
	hasActive := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if satisfied && !hasActive {
		event := models.AlarmEvent{
			ID:           uuid.NewString(),
			RuleID:       rule.ID,
			State:        models.AlarmStateTriggered,
			TriggerValue: measurement.Value,
			TriggeredAt:  measurement.Timestamp,
		}
		if err := s.Db.Conn.Create(&event).Error; err != nil {
			return err
		}

		logger.Info("Alarm triggered", zap.Reflect("event", event))
		metrics.IncAlarmEvent(string(broadcast.EventAlarmTriggered), string(rule.Severity))
		s.publish(s.alarmEvent(broadcast.EventAlarmTriggered, rule, ctx, &event))
		return nil
	}

	if !satisfied && hasActive {
		now := time.Now()
		active.State = models.AlarmStateCleared
		active.ClearedAt = &now
		if err := s.Db.Conn.Save(&active).Error; err != nil {
			return err
		}

		logger.Info("Alarm cleared", zap.Reflect("event", active))
		metrics.IncAlarmEvent(string(broadcast.EventAlarmCleared), string(rule.Severity))
		s.publish(s.alarmEvent(broadcast.EventAlarmCleared, rule, ctx, &active))
		return nil
	}

	// Still satisfied with an active alarm, or still normal: nothing to
	// do. Re-evaluating the same measurement never duplicates a trigger.
	return nil
}

func (s *SCADA) alarmEvent(eventType broadcast.EventType, rule *models.AlarmRule, ctx *alarmContext, event *models.AlarmEvent) broadcast.Event {
	return broadcast.Event{
		Type:      eventType,
		ProjectID: ctx.ProjectID,
		Timestamp: time.Now(),
		Alarm: &broadcast.AlarmPayload{
			AlarmID:      event.ID,
			RuleID:       rule.ID,
			RuleName:     rule.Name,
			TagID:        ctx.Tag.ID,
			TagName:      ctx.Tag.Name,
			DeviceID:     ctx.Device.ID,
			DeviceName:   ctx.Device.Name,
			Severity:     rule.Severity,
			State:        event.State,
			TriggerValue: event.TriggerValue,
			Timestamp:    event.TriggeredAt,
		},
	}
}

// acknowledge is the only external mutator of active alarm state. An
// already cleared alarm reports not_active and is left untouched.
func (s *SCADA) acknowledge(alarmID string, userID string, message string) (*AckResult, error) {
	var event models.AlarmEvent
	if err := s.Db.Conn.First(&event, "id = ?", alarmID).Error; err != nil {
		return nil, err
	}

	var rule models.AlarmRule
	if err := s.Db.Conn.First(&rule, "id = ?", event.RuleID).Error; err != nil {
		return nil, err
	}

	lock := s.ruleLocks.get(rule.ID)
	lock.Lock()
	defer lock.Unlock()

	// reload under the rule lock, the evaluator may have cleared it
	if err := s.Db.Conn.First(&event, "id = ?", alarmID).Error; err != nil {
		return nil, err
	}

	if event.State == models.AlarmStateCleared {
		return &AckResult{Outcome: AckOutcomeNotActive, Event: &event}, nil
	}
	if event.State == models.AlarmStateAcknowledged {
		return &AckResult{Outcome: AckOutcomeAcknowledged, Event: &event}, nil
	}

	now := time.Now()
	event.State = models.AlarmStateAcknowledged
	event.AcknowledgedAt = &now
	event.AcknowledgedBy = userID
	event.AckMessage = message
	if err := s.Db.Conn.Save(&event).Error; err != nil {
		return nil, err
	}

	common.GetLoggerWith(
		common.LoggerNameScadaCore,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryAlarm),
	).Info("Alarm acknowledged", zap.Reflect("event", event))
	metrics.IncAlarmEvent(string(broadcast.EventAlarmAcknowledged), string(rule.Severity))

	if ctx, err := s.getAlarmContext(rule.TagID); err == nil {
		s.publish(s.alarmEvent(broadcast.EventAlarmAcknowledged, &rule, ctx, &event))
	}

	return &AckResult{Outcome: AckOutcomeAcknowledged, Event: &event}, nil
}

// clearManually forces an active alarm to cleared without waiting for a
// normal value.
func (s *SCADA) clearManually(alarmID string) (*ClearResult, error) {
	var event models.AlarmEvent
	if err := s.Db.Conn.First(&event, "id = ?", alarmID).Error; err != nil {
		return nil, err
	}

	var rule models.AlarmRule
	if err := s.Db.Conn.First(&rule, "id = ?", event.RuleID).Error; err != nil {
		return nil, err
	}

	lock := s.ruleLocks.get(rule.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.Db.Conn.First(&event, "id = ?", alarmID).Error; err != nil {
		return nil, err
	}

	if event.State == models.AlarmStateCleared {
		return &ClearResult{Outcome: ClearOutcomeAlreadyCleared, Event: &event}, nil
	}

	now := time.Now()
	event.State = models.AlarmStateCleared
	event.ClearedAt = &now
	if err := s.Db.Conn.Save(&event).Error; err != nil {
		return nil, err
	}

	common.GetLoggerWith(
		common.LoggerNameScadaCore,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryAlarm),
	).Info("Alarm cleared manually", zap.Reflect("event", event))
	metrics.IncAlarmEvent(string(broadcast.EventAlarmCleared), string(rule.Severity))

	if ctx, err := s.getAlarmContext(rule.TagID); err == nil {
		s.publish(s.alarmEvent(broadcast.EventAlarmCleared, &rule, ctx, &event))
	}

	return &ClearResult{Outcome: ClearOutcomeCleared, Event: &event}, nil
}

func (s *SCADA) getProjectAlarms(projectID string, activeOnly bool) ([]models.AlarmEvent, error) {
	query := s.Db.Conn.Model(&models.AlarmEvent{}).
		Select("alarm_events.*").
		Joins("JOIN alarm_rules ON alarm_rules.id = alarm_events.rule_id").
		Joins("JOIN tags ON tags.id = alarm_rules.tag_id").
		Joins("JOIN devices ON devices.id = tags.device_id").
		Where("devices.project_id = ?", projectID)

	if activeOnly {
		query = query.Where("alarm_events.state IN ?",
			[]models.AlarmState{models.AlarmStateTriggered, models.AlarmStateAcknowledged})
	}

	var events []models.AlarmEvent
	err := query.Order("alarm_events.triggered_at desc").Find(&events).Error
	return events, err
}

type IAlarmImpl struct {
	scada *SCADA
}

func (ia *IAlarmImpl) Evaluate(tagID string, measurement *models.Measurement) error {
	return ia.scada.evaluate(tagID, measurement)
}

func (ia *IAlarmImpl) Acknowledge(alarmID string, userID string, message string) (*AckResult, error) {
	return ia.scada.acknowledge(alarmID, userID, message)
}

func (ia *IAlarmImpl) ClearManually(alarmID string) (*ClearResult, error) {
	return ia.scada.clearManually(alarmID)
}

func (ia *IAlarmImpl) GetProjectAlarms(projectID string, activeOnly bool) ([]models.AlarmEvent, error) {
	return ia.scada.getProjectAlarms(projectID, activeOnly)
}

func (s *SCADA) GetIAlarm() IAlarm {
	return &IAlarmImpl{scada: s}
}
