package scada_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/models"
	"webscada.dev/scada-core-service/pkg/scada"
	_ "webscada.dev/scada-core-service/pkg/testing"
)

func writeAndEvaluate(t *testing.T, scadaObj *scada.SCADA, tagID string, value float64, at time.Time) {
	t.Helper()

	m := &models.Measurement{Value: value, Timestamp: at}
	assert.NoError(t, scadaObj.Measurement.WriteMeasurement(tagID, m))

	current, err := scadaObj.Measurement.CurrentValue(tagID)
	assert.NoError(t, err)
	assert.NoError(t, scadaObj.Alarm.Evaluate(tagID, current))
}

func TestAlarmLifecycle(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	projectID, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	base := time.Now()
	writeAndEvaluate(t, scadaObj, tagID, 120, base)
	writeAndEvaluate(t, scadaObj, tagID, 130, base.Add(time.Second))
	writeAndEvaluate(t, scadaObj, tagID, 50, base.Add(2*time.Second))

	// 120 triggers, 130 re-fires nothing, 50 auto-clears.
	var events []models.AlarmEvent
	err := scadaObj.Db.Conn.Where("rule_id = ?", ruleID).Find(&events).Error
	assert.NoError(t, err)
	assert.Len(t, events, 1)

	assert.Equal(t, models.AlarmStateCleared, events[0].State)
	assert.Equal(t, 120.0, events[0].TriggerValue)
	assert.NotNil(t, events[0].ClearedAt)

	// Cleared alarms no longer count as active for the project.
	active, err := scadaObj.Alarm.GetProjectAlarms(projectID, true)
	assert.NoError(t, err)
	assert.Len(t, active, 0)

	all, err := scadaObj.Alarm.GetProjectAlarms(projectID, false)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAlarmRetriggerAfterClear(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	base := time.Now()
	writeAndEvaluate(t, scadaObj, tagID, 120, base)
	writeAndEvaluate(t, scadaObj, tagID, 50, base.Add(time.Second))
	writeAndEvaluate(t, scadaObj, tagID, 110, base.Add(2*time.Second))

	// A new excursion after the clear creates a second event; at most one
	// of them is non-cleared at any time.
	var events []models.AlarmEvent
	err := scadaObj.Db.Conn.Where("rule_id = ?", ruleID).Order("triggered_at asc").Find(&events).Error
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, models.AlarmStateCleared, events[0].State)
	assert.Equal(t, models.AlarmStateTriggered, events[1].State)
	assert.Equal(t, 110.0, events[1].TriggerValue)
}

func TestAlarmDisabledRuleNeverFires(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	err := scadaObj.Db.Conn.Model(&models.AlarmRule{}).
		Where("id = ?", ruleID).
		Update("enabled", false).Error
	assert.NoError(t, err)

	writeAndEvaluate(t, scadaObj, tagID, 999, time.Now())

	var count int64
	err = scadaObj.Db.Conn.Model(&models.AlarmEvent{}).Where("rule_id = ?", ruleID).Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAcknowledgeAlarm(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	writeAndEvaluate(t, scadaObj, tagID, 150, time.Now())

	var event models.AlarmEvent
	err := scadaObj.Db.Conn.First(&event, "rule_id = ?", ruleID).Error
	assert.NoError(t, err)

	result, err := scadaObj.Alarm.Acknowledge(event.ID, "operator-1", "on it")
	assert.NoError(t, err)
	assert.Equal(t, scada.AckOutcomeAcknowledged, result.Outcome)
	assert.Equal(t, models.AlarmStateAcknowledged, result.Event.State)
	assert.Equal(t, "operator-1", result.Event.AcknowledgedBy)
	assert.Equal(t, "on it", result.Event.AckMessage)
	assert.NotNil(t, result.Event.AcknowledgedAt)

	// Acknowledging again is idempotent: same outcome, untouched identity.
	again, err := scadaObj.Alarm.Acknowledge(event.ID, "operator-2", "me too")
	assert.NoError(t, err)
	assert.Equal(t, scada.AckOutcomeAcknowledged, again.Outcome)
	assert.Equal(t, "operator-1", again.Event.AcknowledgedBy)
}

func TestAcknowledgedAlarmStillAutoClears(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	base := time.Now()
	writeAndEvaluate(t, scadaObj, tagID, 150, base)

	var event models.AlarmEvent
	err := scadaObj.Db.Conn.First(&event, "rule_id = ?", ruleID).Error
	assert.NoError(t, err)

	_, err = scadaObj.Alarm.Acknowledge(event.ID, "operator-1", "")
	assert.NoError(t, err)

	writeAndEvaluate(t, scadaObj, tagID, 10, base.Add(time.Second))

	err = scadaObj.Db.Conn.First(&event, "id = ?", event.ID).Error
	assert.NoError(t, err)
	assert.Equal(t, models.AlarmStateCleared, event.State)
	// Ack info survives the clear.
	assert.Equal(t, "operator-1", event.AcknowledgedBy)
	assert.NotNil(t, event.ClearedAt)
}

func TestAcknowledgeClearedAlarm(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	base := time.Now()
	writeAndEvaluate(t, scadaObj, tagID, 150, base)
	writeAndEvaluate(t, scadaObj, tagID, 10, base.Add(time.Second))

	var event models.AlarmEvent
	err := scadaObj.Db.Conn.First(&event, "rule_id = ?", ruleID).Error
	assert.NoError(t, err)
	assert.Equal(t, models.AlarmStateCleared, event.State)

	result, err := scadaObj.Alarm.Acknowledge(event.ID, "operator-1", "too late")
	assert.NoError(t, err)
	assert.Equal(t, scada.AckOutcomeNotActive, result.Outcome)
	assert.Equal(t, models.AlarmStateCleared, result.Event.State)
	assert.Empty(t, result.Event.AcknowledgedBy)
}

func TestClearManually(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	writeAndEvaluate(t, scadaObj, tagID, 150, time.Now())

	var event models.AlarmEvent
	err := scadaObj.Db.Conn.First(&event, "rule_id = ?", ruleID).Error
	assert.NoError(t, err)

	result, err := scadaObj.Alarm.ClearManually(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, scada.ClearOutcomeCleared, result.Outcome)
	assert.Equal(t, models.AlarmStateCleared, result.Event.State)
	assert.NotNil(t, result.Event.ClearedAt)

	again, err := scadaObj.Alarm.ClearManually(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, scada.ClearOutcomeAlreadyCleared, again.Outcome)
}

func TestMultipleRulesOnOneTag(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, highRuleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	lowRule := models.AlarmRule{
		TagID:      tagID,
		Name:       "low temperature",
		Comparator: models.ComparatorLess,
		Threshold:  20,
		Severity:   models.SeverityWarning,
		Enabled:    true,
	}
	assert.NoError(t, scadaObj.Config.UpsertAlarmRule(&lowRule))

	writeAndEvaluate(t, scadaObj, tagID, 150, time.Now())

	// Only the high rule trips; each rule tracks its own event.
	var count int64
	assert.NoError(t, scadaObj.Db.Conn.Model(&models.AlarmEvent{}).
		Where("rule_id = ?", highRuleID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.NoError(t, scadaObj.Db.Conn.Model(&models.AlarmEvent{}).
		Where("rule_id = ?", lowRule.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAlarmLifecycle_WithLog(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	ctrl, scadaObj, _, _, _ := GetMockSCADAWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	_, _, tagID, ruleID := seedTagChain(t, scadaObj, models.ComparatorGreater, 100)

	base := time.Now()
	writeAndEvaluate(t, scadaObj, tagID, 120, base)
	writeAndEvaluate(t, scadaObj, tagID, 50, base.Add(time.Second))

	logs := ParseLogs(buf)

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "alarm" &&
				lobj["logger"] == "scada_core" &&
				lobj["msg"] == "Alarm triggered" &&
				lobj["event"].(map[string]any)["RuleID"] == ruleID &&
				lobj["event"].(map[string]any)["TriggerValue"] == 120.0 {
				found = true
			}
		}
		assert.True(t, found)
	}

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "alarm" &&
				lobj["logger"] == "scada_core" &&
				lobj["msg"] == "Alarm cleared" &&
				lobj["event"].(map[string]any)["RuleID"] == ruleID &&
				lobj["event"].(map[string]any)["State"] == "cleared" {
				found = true
			}
		}
		assert.True(t, found)
	}
}
