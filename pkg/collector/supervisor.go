package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/metrics"
	"webscada.dev/scada-core-service/pkg/models"
	"webscada.dev/scada-core-service/pkg/scada"
)

const DefaultTick = 1 * time.Second

// TagSampler produces one simulated value per call. ValidateTag lets
// the supervisor refuse a device whose tag names a pattern the sampler
// does not know, before any loop is spawned.
type TagSampler interface {
	Sample(tag *models.Tag, now time.Time) (float64, error)
	ValidateTag(tag *models.Tag) error
}

type Status struct {
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at,omitempty"`
	TagCount  int       `json:"tag_count"`
}

type StartResult struct {
	Status         Status `json:"status"`
	AlreadyRunning bool   `json:"already_running"`
}

type runner struct {
	deviceID  string
	projectID string
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
	tagCount  int
}

// Supervisor owns the collection loop lifecycle for every device and
// guarantees at most one live loop per device id.
type Supervisor struct {
	mu      sync.Mutex
	runners map[string]*runner

	scada       *scada.SCADA
	sampler     TagSampler
	defaultTick time.Duration
}

func NewSupervisor(core *scada.SCADA, sampler TagSampler, defaultTick time.Duration) *Supervisor {
	if defaultTick <= 0 {
		defaultTick = DefaultTick
	}
	return &Supervisor{
		runners:     make(map[string]*runner),
		scada:       core,
		sampler:     sampler,
		defaultTick: defaultTick,
	}
}

// Start is idempotent: a second start of a running device returns the
// current status without spawning another loop.
func (sv *Supervisor) Start(deviceID string) (*StartResult, error) {
	device, err := sv.scada.Config.GetDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("start collection: device %s: %w", deviceID, err)
	}

	tags, err := sv.scada.Config.GetDeviceTags(deviceID)
	if err != nil {
		return nil, fmt.Errorf("start collection: tags of %s: %w", deviceID, err)
	}

	simTags := make([]models.Tag, 0, len(tags))
	for i := range tags {
		if !tags[i].Simulation {
			continue
		}
		if err := scada.ValidateTagConfig(&tags[i]); err != nil {
			return nil, fmt.Errorf("start collection: %w", err)
		}
		if err := sv.sampler.ValidateTag(&tags[i]); err != nil {
			return nil, fmt.Errorf("start collection: %w", err)
		}
		simTags = append(simTags, tags[i])
	}

	sv.mu.Lock()
	if existing, running := sv.runners[deviceID]; running {
		status := statusOf(existing)
		sv.mu.Unlock()
		return &StartResult{Status: status, AlreadyRunning: true}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &runner{
		deviceID:  deviceID,
		projectID: device.ProjectID,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
		tagCount:  len(simTags),
	}
	sv.runners[deviceID] = r
	activeCount := len(sv.runners)
	sv.mu.Unlock()

	if err := sv.scada.Config.SetCollectionActive(deviceID, true); err != nil {
		common.GetLoggerWith(common.LoggerNameCollector,
			zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryDeviceRunner),
		).Warn("Failed to flag collection active", zap.String("device_id", deviceID), zap.Error(err))
	}

	metrics.SetActiveCollectors(activeCount)

	go sv.run(ctx, r, simTags)

	sv.publish(broadcast.Event{
		Type:      broadcast.EventDeviceStatus,
		ProjectID: r.projectID,
		Timestamp: time.Now(),
		DeviceStatus: &broadcast.DeviceStatusPayload{
			DeviceID:  deviceID,
			Running:   true,
			StartedAt: r.startedAt,
			TagCount:  r.tagCount,
		},
	})

	return &StartResult{Status: statusOf(r)}, nil
}

// Stop cancels the device loop if one runs. Idempotent on a stopped
// device. The in-flight tick finishes its current tag write first.
func (sv *Supervisor) Stop(deviceID string) (*Status, error) {
	sv.mu.Lock()
	r, running := sv.runners[deviceID]
	if running {
		delete(sv.runners, deviceID)
	}
	activeCount := len(sv.runners)
	sv.mu.Unlock()

	if !running {
		return &Status{Running: false}, nil
	}

	r.cancel()
	metrics.SetActiveCollectors(activeCount)

	if err := sv.scada.Config.SetCollectionActive(deviceID, false); err != nil {
		common.GetLoggerWith(common.LoggerNameCollector,
			zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryDeviceRunner),
		).Warn("Failed to clear collection active flag", zap.String("device_id", deviceID), zap.Error(err))
	}

	sv.publish(broadcast.Event{
		Type:      broadcast.EventDeviceStatus,
		ProjectID: r.projectID,
		Timestamp: time.Now(),
		DeviceStatus: &broadcast.DeviceStatusPayload{
			DeviceID: deviceID,
			Running:  false,
			TagCount: r.tagCount,
		},
	})

	return &Status{Running: false}, nil
}

func (sv *Supervisor) Status(deviceID string) Status {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if r, running := sv.runners[deviceID]; running {
		return statusOf(r)
	}
	return Status{Running: false}
}

// StopAll cancels every loop and waits for them to drain. Used on
// process shutdown so no timers outlive the supervisor.
func (sv *Supervisor) StopAll() {
	sv.mu.Lock()
	stopped := make([]*runner, 0, len(sv.runners))
	for _, r := range sv.runners {
		stopped = append(stopped, r)
	}
	sv.runners = make(map[string]*runner)
	sv.mu.Unlock()

	for _, r := range stopped {
		r.cancel()
	}
	for _, r := range stopped {
		<-r.done
	}
	metrics.SetActiveCollectors(0)
}

func (sv *Supervisor) publish(ev broadcast.Event) {
	if sv.scada.Sink != nil {
		sv.scada.Sink.Publish(ev)
	}
}

func statusOf(r *runner) Status {
	return Status{Running: true, StartedAt: r.startedAt, TagCount: r.tagCount}
}

func (sv *Supervisor) run(ctx context.Context, r *runner, tags []models.Tag) {
	defer close(r.done)

	logger := common.GetLoggerWith(common.LoggerNameCollector,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryDeviceRunner),
		zap.String("device_id", r.deviceID),
	)

	// the loop ticks at the fastest interval any tag asks for
	tick := common.Reducer(tags, func(acc time.Duration, tag models.Tag) time.Duration {
		if tag.UpdateIntervalMs > 0 {
			if interval := time.Duration(tag.UpdateIntervalMs) * time.Millisecond; interval < acc {
				return interval
			}
		}
		return acc
	}, sv.defaultTick)

	logger.Info("Collection loop started",
		zap.Strings("tags", common.Mapper(tags, func(tag models.Tag) string { return tag.Name })),
		zap.Duration("tick", tick))

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Collection loop stopped")
			return
		case now := <-ticker.C:
			sv.collectOnce(ctx, r, tags, now)
		}
	}
}

// collectOnce processes the device's tags in stable order. A failure on
// one tag is logged and skipped; the rest of the tick continues.
func (sv *Supervisor) collectOnce(ctx context.Context, r *runner, tags []models.Tag, now time.Time) {
	logger := common.GetLoggerWith(common.LoggerNameCollector,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryDeviceRunner),
		zap.String("device_id", r.deviceID),
	)

	for i := range tags {
		// cancellation checkpoint between tags, never mid-write
		select {
		case <-ctx.Done():
			return
		default:
		}

		tag := &tags[i]

		value, err := sv.sampler.Sample(tag, now)
		if err != nil {
			metrics.IncMeasurementError("sample")
			logger.Warn("Sampling failed", zap.String("tag_id", tag.ID), zap.Error(err))
			continue
		}

		measurement := models.Measurement{
			TagID:     tag.ID,
			Value:     value,
			Timestamp: now,
			Quality:   models.QualityGood,
			Source:    models.SourceRealtime,
		}

		if err := sv.scada.Measurement.WriteMeasurement(tag.ID, &measurement); err != nil {
			logger.Warn("Measurement write failed, retrying next tick",
				zap.String("tag_id", tag.ID), zap.Error(err))
			continue
		}

		if err := sv.scada.Alarm.Evaluate(tag.ID, &measurement); err != nil {
			logger.Warn("Alarm evaluation failed",
				zap.String("tag_id", tag.ID), zap.Error(err))
		}

		sv.publish(broadcast.Event{
			Type:      broadcast.EventMeasurement,
			ProjectID: r.projectID,
			Timestamp: now,
			Measurement: &broadcast.MeasurementPayload{
				TagID:     tag.ID,
				TagName:   tag.Name,
				DeviceID:  r.deviceID,
				Value:     value,
				Timestamp: now,
				Quality:   measurement.Quality,
			},
		})
	}
}
