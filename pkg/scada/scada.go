package scada

import (
	"sync"

	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/db"
	"webscada.dev/scada-core-service/pkg/models"
)

type IMeasurement interface {
	WriteMeasurement(tagID string, input *models.Measurement) error
	CurrentValue(tagID string) (*models.Measurement, error)
	Query(tagID string, q *MeasurementQuery) (*MeasurementPage, error)
}

type IAlarm interface {
	Evaluate(tagID string, measurement *models.Measurement) error
	Acknowledge(alarmID string, userID string, message string) (*AckResult, error)
	ClearManually(alarmID string) (*ClearResult, error)
	GetProjectAlarms(projectID string, activeOnly bool) ([]models.AlarmEvent, error)
}

type IConfig interface {
	UpsertProject(input *models.Project) error
	UpsertDevice(input *models.Device) error
	UpsertTag(input *models.Tag) error
	UpsertAlarmRule(input *models.AlarmRule) error
	GetDevice(deviceID string) (*models.Device, error)
	GetDeviceTags(deviceID string) ([]models.Tag, error)
	SetCollectionActive(deviceID string, active bool) error
}

// EventSink receives pipeline events for realtime fan-out. Injected
// explicitly so the core never reaches for an ambient broadcaster.
type EventSink interface {
	Publish(ev broadcast.Event)
}

type SCADA struct {
	Db          db.DB
	Measurement IMeasurement
	Alarm       IAlarm
	Config      IConfig
	Sink        EventSink

	ruleLocks ruleLockStore
}

type ServiceOpts struct {
	Measurement IMeasurement
	Alarm       IAlarm
	Config      IConfig
	Sink        EventSink
}

func (s *SCADA) WithServices(opts ServiceOpts) *SCADA {
	if opts.Measurement != nil {
		s.Measurement = opts.Measurement
	}
	if opts.Alarm != nil {
		s.Alarm = opts.Alarm
	}
	if opts.Config != nil {
		s.Config = opts.Config
	}
	if opts.Sink != nil {
		s.Sink = opts.Sink
	}
	return s
}

func (s *SCADA) publish(ev broadcast.Event) {
	if s.Sink != nil {
		s.Sink.Publish(ev)
	}
}

// ruleLockStore hands out one mutex per alarm rule so concurrent timer
// firings on the same rule serialize without cross-rule contention.
type ruleLockStore struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *ruleLockStore) get(ruleID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	lock, exists := r.locks[ruleID]
	if !exists {
		lock = &sync.Mutex{}
		r.locks[ruleID] = lock
	}
	return lock
}
