package broadcast

import (
	"time"

	"webscada.dev/scada-core-service/pkg/models"
)

type EventType string

const (
	EventMeasurement       EventType = "measurement"
	EventAlarmTriggered    EventType = "alarm_triggered"
	EventAlarmAcknowledged EventType = "alarm_acknowledged"
	EventAlarmCleared      EventType = "alarm_cleared"
	EventDeviceStatus      EventType = "device_status"
)

// Event is the canonical envelope delivered to realtime subscribers.
// Exactly one payload pointer is set, selected by Type.
type Event struct {
	Type      EventType `json:"type"`
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`

	Measurement  *MeasurementPayload  `json:"measurement,omitempty"`
	Alarm        *AlarmPayload        `json:"alarm,omitempty"`
	DeviceStatus *DeviceStatusPayload `json:"device_status,omitempty"`
}

type MeasurementPayload struct {
	TagID     string         `json:"tag_id"`
	TagName   string         `json:"tag_name,omitempty"`
	DeviceID  string         `json:"device_id"`
	Value     float64        `json:"value"`
	Timestamp time.Time      `json:"timestamp"`
	Quality   models.Quality `json:"quality"`
}

type AlarmPayload struct {
	AlarmID      string            `json:"alarm_id"`
	RuleID       string            `json:"rule_id"`
	RuleName     string            `json:"rule_name"`
	TagID        string            `json:"tag_id"`
	TagName      string            `json:"tag_name"`
	DeviceID     string            `json:"device_id"`
	DeviceName   string            `json:"device_name"`
	Severity     models.Severity   `json:"severity"`
	State        models.AlarmState `json:"state"`
	TriggerValue float64           `json:"trigger_value"`
	Timestamp    time.Time         `json:"timestamp"`
}

type DeviceStatusPayload struct {
	DeviceID  string    `json:"device_id"`
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at,omitempty"`
	TagCount  int       `json:"tag_count"`
}
