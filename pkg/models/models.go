package models

import "time"

type DeviceType string

const (
	DeviceTypePolled     DeviceType = "polled"
	DeviceTypeMessageBus DeviceType = "message_bus"
	DeviceTypeSimulation DeviceType = "simulation"
)

type TagType string

const (
	TagTypeAnalog     TagType = "analog"
	TagTypeDigital    TagType = "digital"
	TagTypeString     TagType = "string"
	TagTypeCounter    TagType = "counter"
	TagTypeCalculated TagType = "calculated"
)

type Quality string

const (
	QualityGood      Quality = "good"
	QualityBad       Quality = "bad"
	QualityUncertain Quality = "uncertain"
	QualityStale     Quality = "stale"
)

type MeasurementSource string

const (
	SourceRealtime MeasurementSource = "realtime"
	SourceDatabase MeasurementSource = "database"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Comparator string

const (
	ComparatorGreater        Comparator = ">"
	ComparatorGreaterOrEqual Comparator = ">="
	ComparatorLess           Comparator = "<"
	ComparatorLessOrEqual    Comparator = "<="
	ComparatorEqual          Comparator = "=="
	ComparatorNotEqual       Comparator = "!="
)

func (c Comparator) Valid() bool {
	switch c {
	case ComparatorGreater, ComparatorGreaterOrEqual, ComparatorLess,
		ComparatorLessOrEqual, ComparatorEqual, ComparatorNotEqual:
		return true
	default:
		return false
	}
}

// Satisfied reports whether value matches the comparator against threshold.
func (c Comparator) Satisfied(value, threshold float64) bool {
	switch c {
	case ComparatorGreater:
		return value > threshold
	case ComparatorGreaterOrEqual:
		return value >= threshold
	case ComparatorLess:
		return value < threshold
	case ComparatorLessOrEqual:
		return value <= threshold
	case ComparatorEqual:
		return value == threshold
	case ComparatorNotEqual:
		return value != threshold
	default:
		return false
	}
}

// AlarmState is the single canonical lifecycle field of an alarm event.
type AlarmState string

const (
	AlarmStateTriggered    AlarmState = "triggered"
	AlarmStateAcknowledged AlarmState = "acknowledged"
	AlarmStateCleared      AlarmState = "cleared"
)

// Active means the alarm still demands attention (not yet cleared).
func (s AlarmState) Active() bool {
	return s == AlarmStateTriggered || s == AlarmStateAcknowledged
}

type Project struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time

	Devices []Device `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

type Device struct {
	ID        string `gorm:"primaryKey"`
	ProjectID string `gorm:"index"`
	Name      string
	Type      DeviceType `gorm:"type:varchar(20);check:type IN ('polled','message_bus','simulation')"`
	Address   string
	Port      int

	CollectionActive bool

	Tags []Tag `gorm:"foreignKey:DeviceID;references:ID;constraint:OnDelete:CASCADE"`
}

type Tag struct {
	ID       string `gorm:"primaryKey"`
	DeviceID string `gorm:"index"`
	Name     string
	Type     TagType `gorm:"type:varchar(20)"`

	// Address is the identifier within the owning device; its meaning
	// depends on the device type (register number, topic, ...).
	Address          string
	UpdateIntervalMs int

	Simulation bool
	Pattern    string
	Min        float64
	Max        float64
	Noise      float64
	// StatePattern is the comma separated 0/1 cycle for digital tags.
	StatePattern string

	Unit      string
	RawMin    float64
	RawMax    float64
	ScaledMin float64
	ScaledMax float64
	Deadband  float64
	ReadOnly  bool
	TagGroup  string

	Measurements []Measurement `gorm:"foreignKey:TagID;references:ID;constraint:OnDelete:CASCADE"`
	AlarmRules   []AlarmRule   `gorm:"foreignKey:TagID;references:ID;constraint:OnDelete:CASCADE"`
}

// Measurement is an append-only fact, never updated after insert.
type Measurement struct {
	ID        uint   `gorm:"primaryKey"`
	TagID     string `gorm:"index:idx_measurements_tag_time"`
	Value     float64
	Timestamp time.Time         `gorm:"index:idx_measurements_tag_time"`
	Quality   Quality           `gorm:"type:varchar(20);check:quality IN ('good','bad','uncertain','stale')"`
	Source    MeasurementSource `gorm:"type:varchar(20)"`
}

type AlarmRule struct {
	ID         string `gorm:"primaryKey"`
	TagID      string `gorm:"index"`
	Name       string
	Comparator Comparator `gorm:"type:varchar(4)"`
	Threshold  float64
	Severity   Severity `gorm:"type:varchar(20);check:severity IN ('info','warning','critical')"`
	Enabled    bool

	Events []AlarmEvent `gorm:"foreignKey:RuleID;references:ID;constraint:OnDelete:CASCADE"`
}

type AlarmEvent struct {
	ID     string     `gorm:"primaryKey"`
	RuleID string     `gorm:"index"`
	State  AlarmState `gorm:"type:varchar(20);check:state IN ('triggered','acknowledged','cleared')"`

	TriggerValue float64
	TriggeredAt  time.Time

	AcknowledgedAt *time.Time
	AcknowledgedBy string
	AckMessage     string

	ClearedAt *time.Time
}
