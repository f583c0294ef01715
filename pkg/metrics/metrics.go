package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "scada_"

var (
	registerOnce sync.Once

	measurementsWritten prometheus.Counter
	measurementErrors   *prometheus.CounterVec

	alarmEventsTotal *prometheus.CounterVec

	activeCollectors prometheus.Gauge

	subscribersGauge prometheus.Gauge
	eventsPublished  *prometheus.CounterVec
	eventsDropped    prometheus.Counter
)

// Init registers the pipeline metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		measurementsWritten = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "measurements_written_total",
				Help: "Total measurements persisted",
			},
		)
		measurementErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "measurement_errors_total",
				Help: "Total measurement pipeline errors by stage",
			},
			[]string{"stage"},
		)

		alarmEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_events_total",
				Help: "Total alarm lifecycle events by type and severity",
			},
			[]string{"event", "severity"},
		)

		activeCollectors = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "active_collectors",
				Help: "Number of devices with a running collection loop",
			},
		)

		subscribersGauge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "subscribers",
				Help: "Number of currently connected realtime subscribers",
			},
		)
		eventsPublished = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_published_total",
				Help: "Total events published to the fan-out hub by type",
			},
			[]string{"type"},
		)
		eventsDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_dropped_total",
				Help: "Total events dropped on slow subscriber queues",
			},
		)

		prometheus.MustRegister(
			measurementsWritten,
			measurementErrors,
			alarmEventsTotal,
			activeCollectors,
			subscribersGauge,
			eventsPublished,
			eventsDropped,
		)
	})
}

func IncMeasurementWritten() {
	if measurementsWritten != nil {
		measurementsWritten.Inc()
	}
}

func IncMeasurementError(stage string) {
	if stage == "" {
		stage = "unknown"
	}
	if measurementErrors != nil {
		measurementErrors.WithLabelValues(stage).Inc()
	}
}

func IncAlarmEvent(event, severity string) {
	if event == "" {
		event = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}
	if alarmEventsTotal != nil {
		alarmEventsTotal.WithLabelValues(event, severity).Inc()
	}
}

func SetActiveCollectors(n int) {
	if activeCollectors != nil {
		activeCollectors.Set(float64(n))
	}
}

func AddSubscriber(delta int) {
	if subscribersGauge != nil {
		subscribersGauge.Add(float64(delta))
	}
}

func IncEventPublished(eventType string) {
	if eventType == "" {
		eventType = "unknown"
	}
	if eventsPublished != nil {
		eventsPublished.WithLabelValues(eventType).Inc()
	}
}

func IncEventDropped() {
	if eventsDropped != nil {
		eventsDropped.Inc()
	}
}
