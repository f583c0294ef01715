package scada

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/metrics"
	"webscada.dev/scada-core-service/pkg/models"
)

type MeasurementQuery struct {
	Start     time.Time
	End       time.Time
	Direction string // "asc" (default) or "desc", ordered by timestamp
	Limit     int
	Offset    int
}

type MeasurementStats struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

type MeasurementPage struct {
	Measurements []models.Measurement `json:"measurements"`
	Stats        MeasurementStats     `json:"stats"`
}

const defaultQueryLimit = 1000

func (s *SCADA) writeMeasurement(tagID string, input *models.Measurement) error {
	logger := common.GetLoggerWith(
		common.LoggerNameScadaCore,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryMeasurement),
	)

	measurement := models.Measurement{
		TagID:     tagID,
		Value:     input.Value,
		Timestamp: input.Timestamp,
		Quality:   input.Quality,
		Source:    input.Source,
	}
	if measurement.Quality == "" {
		measurement.Quality = models.QualityGood
	}
	if measurement.Source == "" {
		measurement.Source = models.SourceRealtime
	}

	if err := s.Db.Conn.Create(&measurement).Error; err != nil {
		metrics.IncMeasurementError("write")
		return err
	}

	metrics.IncMeasurementWritten()
	logger.Debug("Measurement written", zap.Reflect("measurement", measurement))
	return nil
}

// currentValue returns the row with the max timestamp; ties go to the
// earliest inserted row (first write wins).
func (s *SCADA) currentValue(tagID string) (*models.Measurement, error) {
	var measurement models.Measurement
	err := s.Db.Conn.
		Where("tag_id = ?", tagID).
		Order("timestamp desc, id asc").
		First(&measurement).Error
	if err != nil {
		return nil, err
	}
	return &measurement, nil
}

func (s *SCADA) queryMeasurements(tagID string, q *MeasurementQuery) (*MeasurementPage, error) {
	if q == nil {
		return nil, fmt.Errorf("measurement query is nil")
	}
	if q.End.Before(q.Start) {
		return nil, fmt.Errorf("measurement query: end %v before start %v", q.End, q.Start)
	}

	direction := q.Direction
	switch direction {
	case "", "asc":
		direction = "asc"
	case "desc":
	default:
		return nil, fmt.Errorf("measurement query: invalid direction %q", q.Direction)
	}

	limit := q.Limit
	if limit <= 0 || limit > defaultQueryLimit {
		limit = defaultQueryLimit
	}

	// tag_id + timestamp hit the composite index, no full scan.
	var stats MeasurementStats
	err := s.Db.Conn.Model(&models.Measurement{}).
		Where("tag_id = ? AND timestamp >= ? AND timestamp <= ?", tagID, q.Start, q.End).
		Select("count(*) as count, coalesce(min(value), 0) as min, coalesce(max(value), 0) as max, coalesce(avg(value), 0) as avg").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	var measurements []models.Measurement
	err = s.Db.Conn.
		Where("tag_id = ? AND timestamp >= ? AND timestamp <= ?", tagID, q.Start, q.End).
		Order("timestamp " + direction + ", id " + direction).
		Limit(limit).
		Offset(q.Offset).
		Find(&measurements).Error
	if err != nil {
		return nil, err
	}

	return &MeasurementPage{Measurements: measurements, Stats: stats}, nil
}

type IMeasurementImpl struct {
	scada *SCADA
}

func (im *IMeasurementImpl) WriteMeasurement(tagID string, input *models.Measurement) error {
	return im.scada.writeMeasurement(tagID, input)
}

func (im *IMeasurementImpl) CurrentValue(tagID string) (*models.Measurement, error) {
	return im.scada.currentValue(tagID)
}

func (im *IMeasurementImpl) Query(tagID string, q *MeasurementQuery) (*MeasurementPage, error) {
	return im.scada.queryMeasurements(tagID, q)
}

func (s *SCADA) GetIMeasurement() IMeasurement {
	return &IMeasurementImpl{scada: s}
}
