package subscription

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/models"
)

// Stream is one live event connection. Next blocks until an event
// arrives or the connection dies.
type Stream interface {
	Next() (*broadcast.Event, error)
	Close() error
}

type Dialer interface {
	Dial(projectID string) (Stream, error)
}

type TagValue struct {
	Value     float64        `json:"value"`
	Timestamp time.Time      `json:"timestamp"`
	Quality   models.Quality `json:"quality"`
}

type Options struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	AlarmHistory   int
}

func (o *Options) withDefaults() {
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
	if o.AlarmHistory <= 0 {
		o.AlarmHistory = 100
	}
}

// Manager keeps a local cache of the latest values and recent alarms
// for one project. Delivery is at-most-once: after a reconnect, missed
// events are gone and completeness requires a store re-fetch.
type Manager struct {
	projectID string
	dialer    Dialer
	opts      Options

	mu         sync.RWMutex
	latest     map[string]TagValue
	alarms     []broadcast.AlarmPayload
	connected  bool
	reconnects int
}

func NewManager(projectID string, dialer Dialer, opts Options) *Manager {
	opts.withDefaults()
	return &Manager{
		projectID: projectID,
		dialer:    dialer,
		opts:      opts,
		latest:    make(map[string]TagValue),
	}
}

// Run connects and consumes events until ctx is done, reconnecting
// with exponential backoff after every drop.
func (m *Manager) Run(ctx context.Context) {
	logger := common.GetLoggerWith(common.LoggerNameSubscription,
		zap.String("project_id", m.projectID))

	backoff := m.opts.InitialBackoff
	first := true

	for {
		if ctx.Err() != nil {
			return
		}

		if !first {
			m.mu.Lock()
			m.reconnects++
			m.mu.Unlock()

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > m.opts.MaxBackoff {
				backoff = m.opts.MaxBackoff
			}
		}
		first = false

		stream, err := m.dialer.Dial(m.projectID)
		if err != nil {
			logger.Warn("Dial failed", zap.Error(err))
			continue
		}

		m.setConnected(true)
		backoff = m.opts.InitialBackoff
		logger.Info("Connected")

		m.consume(ctx, stream)

		m.setConnected(false)
		stream.Close()
		logger.Info("Disconnected")
	}
}

func (m *Manager) consume(ctx context.Context, stream Stream) {
	for {
		if ctx.Err() != nil {
			return
		}
		ev, err := stream.Next()
		if err != nil {
			return
		}
		m.apply(ev)
	}
}

func (m *Manager) apply(ev *broadcast.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Type {
	case broadcast.EventMeasurement:
		if ev.Measurement == nil {
			return
		}
		current, exists := m.latest[ev.Measurement.TagID]
		if exists && ev.Measurement.Timestamp.Before(current.Timestamp) {
			return
		}
		m.latest[ev.Measurement.TagID] = TagValue{
			Value:     ev.Measurement.Value,
			Timestamp: ev.Measurement.Timestamp,
			Quality:   ev.Measurement.Quality,
		}
	case broadcast.EventAlarmTriggered, broadcast.EventAlarmAcknowledged, broadcast.EventAlarmCleared:
		if ev.Alarm == nil {
			return
		}
		m.alarms = append(m.alarms, *ev.Alarm)
		if len(m.alarms) > m.opts.AlarmHistory {
			m.alarms = m.alarms[len(m.alarms)-m.opts.AlarmHistory:]
		}
	}
}

func (m *Manager) setConnected(connected bool) {
	m.mu.Lock()
	m.connected = connected
	m.mu.Unlock()
}

func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Manager) ReconnectAttempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reconnects
}

func (m *Manager) LatestValue(tagID string) (TagValue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.latest[tagID]
	return value, exists
}

func (m *Manager) RecentAlarms() []broadcast.AlarmPayload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	alarms := make([]broadcast.AlarmPayload, len(m.alarms))
	copy(alarms, m.alarms)
	return alarms
}

// ActiveAlarms filters the recent history down to the latest state per
// rule and keeps the non-cleared ones. One state comparison, no
// optional-field guessing.
func (m *Manager) ActiveAlarms() []broadcast.AlarmPayload {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latestByRule := make(map[string]broadcast.AlarmPayload)
	for _, alarm := range m.alarms {
		latestByRule[alarm.RuleID] = alarm
	}

	active := make([]broadcast.AlarmPayload, 0, len(latestByRule))
	for _, alarm := range latestByRule {
		if alarm.State.Active() {
			active = append(active, alarm)
		}
	}
	return active
}
