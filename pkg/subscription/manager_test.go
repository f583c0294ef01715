package subscription

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/models"
	_ "webscada.dev/scada-core-service/pkg/testing"
)

// fakeStream hands out scripted events, then reports a broken
// connection.
type fakeStream struct {
	mu     sync.Mutex
	events []*broadcast.Event
	idx    int
}

func (s *fakeStream) Next() (*broadcast.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.idx]
	s.idx++
	return ev, nil
}

func (s *fakeStream) Close() error { return nil }

// fakeDialer serves one scripted stream per dial attempt and fails once
// the script runs out.
type fakeDialer struct {
	mu      sync.Mutex
	streams []*fakeStream
	dials   int
}

func (d *fakeDialer) Dial(projectID string) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.streams) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	stream := d.streams[0]
	d.streams = d.streams[1:]
	return stream, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func measurementEvent(projectID, tagID string, value float64, at time.Time) *broadcast.Event {
	return &broadcast.Event{
		Type:      broadcast.EventMeasurement,
		ProjectID: projectID,
		Timestamp: at,
		Measurement: &broadcast.MeasurementPayload{
			TagID:     tagID,
			Value:     value,
			Timestamp: at,
			Quality:   models.QualityGood,
		},
	}
}

func alarmEvent(projectID, ruleID string, eventType broadcast.EventType, state models.AlarmState) *broadcast.Event {
	return &broadcast.Event{
		Type:      eventType,
		ProjectID: projectID,
		Timestamp: time.Now(),
		Alarm: &broadcast.AlarmPayload{
			AlarmID: uuid.NewString(),
			RuleID:  ruleID,
			State:   state,
		},
	}
}

func testOptions() Options {
	return Options{
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		AlarmHistory:   10,
	}
}

func TestLatestValueCache(t *testing.T) {
	common.SetTestLoggerNop()

	projectID := uuid.NewString()
	base := time.Now()

	dialer := &fakeDialer{streams: []*fakeStream{{events: []*broadcast.Event{
		measurementEvent(projectID, "tag-a", 10, base),
		measurementEvent(projectID, "tag-b", 5, base),
		measurementEvent(projectID, "tag-a", 20, base.Add(time.Second)),
	}}}}

	m := NewManager(projectID, dialer, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		v, ok := m.LatestValue("tag-a")
		return ok && v.Value == 20
	}, 5*time.Second, time.Millisecond)

	v, ok := m.LatestValue("tag-b")
	require.True(t, ok)
	assert.Equal(t, 5.0, v.Value)
	assert.Equal(t, models.QualityGood, v.Quality)

	_, ok = m.LatestValue("tag-unknown")
	assert.False(t, ok)

	cancel()
	<-done
}

func TestStaleMeasurementIgnored(t *testing.T) {
	common.SetTestLoggerNop()

	projectID := uuid.NewString()
	base := time.Now()

	m := NewManager(projectID, &fakeDialer{}, testOptions())

	m.apply(measurementEvent(projectID, "tag-a", 20, base.Add(time.Second)))
	m.apply(measurementEvent(projectID, "tag-a", 10, base))

	v, ok := m.LatestValue("tag-a")
	require.True(t, ok)
	assert.Equal(t, 20.0, v.Value)
}

func TestReconnectWithBackoff(t *testing.T) {
	common.SetTestLoggerNop()

	projectID := uuid.NewString()

	// Two short lived streams, then every dial fails.
	dialer := &fakeDialer{streams: []*fakeStream{
		{events: []*broadcast.Event{measurementEvent(projectID, "tag-a", 1, time.Now())}},
		{events: []*broadcast.Event{measurementEvent(projectID, "tag-a", 2, time.Now().Add(time.Second))}},
	}}

	m := NewManager(projectID, dialer, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// Both streams get consumed across the reconnect, and the cache
	// carries over.
	assert.Eventually(t, func() bool {
		v, ok := m.LatestValue("tag-a")
		return ok && v.Value == 2
	}, 5*time.Second, time.Millisecond)

	assert.Eventually(t, func() bool {
		return m.ReconnectAttempts() >= 3 && dialer.dialCount() >= 3
	}, 5*time.Second, time.Millisecond)

	cancel()
	<-done

	assert.False(t, m.Connected())
}

func TestConnectedFlag(t *testing.T) {
	common.SetTestLoggerNop()

	projectID := uuid.NewString()

	blocking := &blockingStream{release: make(chan struct{})}
	m := NewManager(projectID, &singleDialer{stream: blocking}, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Connected() }, 5*time.Second, time.Millisecond)

	close(blocking.release)
	assert.Eventually(t, func() bool { return !m.Connected() }, 5*time.Second, time.Millisecond)

	cancel()
	<-done
}

// blockingStream stays healthy until released, then dies.
type blockingStream struct {
	release chan struct{}
	once    sync.Once
}

func (s *blockingStream) Next() (*broadcast.Event, error) {
	<-s.release
	return nil, io.EOF
}

func (s *blockingStream) Close() error {
	s.once.Do(func() {})
	return nil
}

// singleDialer serves one stream, then fails all dials.
type singleDialer struct {
	mu     sync.Mutex
	stream Stream
}

func (d *singleDialer) Dial(projectID string) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return nil, io.ErrUnexpectedEOF
	}
	s := d.stream
	d.stream = nil
	return s, nil
}

func TestAlarmHistoryRing(t *testing.T) {
	common.SetTestLoggerNop()

	projectID := uuid.NewString()
	opts := testOptions()
	opts.AlarmHistory = 3

	m := NewManager(projectID, &fakeDialer{}, opts)

	for i := 0; i < 5; i++ {
		m.apply(alarmEvent(projectID, uuid.NewString(), broadcast.EventAlarmTriggered, models.AlarmStateTriggered))
	}

	assert.Len(t, m.RecentAlarms(), 3)
}

func TestActiveAlarms(t *testing.T) {
	common.SetTestLoggerNop()

	projectID := uuid.NewString()
	m := NewManager(projectID, &fakeDialer{}, testOptions())

	ruleCleared := uuid.NewString()
	ruleAcked := uuid.NewString()
	ruleTriggered := uuid.NewString()

	m.apply(alarmEvent(projectID, ruleCleared, broadcast.EventAlarmTriggered, models.AlarmStateTriggered))
	m.apply(alarmEvent(projectID, ruleCleared, broadcast.EventAlarmCleared, models.AlarmStateCleared))
	m.apply(alarmEvent(projectID, ruleAcked, broadcast.EventAlarmTriggered, models.AlarmStateTriggered))
	m.apply(alarmEvent(projectID, ruleAcked, broadcast.EventAlarmAcknowledged, models.AlarmStateAcknowledged))
	m.apply(alarmEvent(projectID, ruleTriggered, broadcast.EventAlarmTriggered, models.AlarmStateTriggered))

	active := m.ActiveAlarms()
	require.Len(t, active, 2)

	states := map[string]models.AlarmState{}
	for _, alarm := range active {
		states[alarm.RuleID] = alarm.State
	}
	assert.Equal(t, models.AlarmStateAcknowledged, states[ruleAcked])
	assert.Equal(t, models.AlarmStateTriggered, states[ruleTriggered])
	assert.NotContains(t, states, ruleCleared)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	common.SetTestLoggerNop()

	m := NewManager(uuid.NewString(), &fakeDialer{}, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
