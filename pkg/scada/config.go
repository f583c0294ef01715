package scada

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/models"
)

// ValidateTagConfig rejects tag configs that can never sample sanely.
// Reported at config/start time, never during collection.
func ValidateTagConfig(tag *models.Tag) error {
	if tag.Simulation {
		if tag.Max < tag.Min {
			return fmt.Errorf("tag %s: max %v below min %v", tag.ID, tag.Max, tag.Min)
		}
		if tag.Noise < 0 {
			return fmt.Errorf("tag %s: negative noise %v", tag.ID, tag.Noise)
		}
	}
	if tag.UpdateIntervalMs < 0 {
		return fmt.Errorf("tag %s: negative update interval %d", tag.ID, tag.UpdateIntervalMs)
	}
	return nil
}

func (s *SCADA) upsertProject(input *models.Project) error {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	return s.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(input).Error
}

func (s *SCADA) upsertDevice(input *models.Device) error {
	logger := common.GetLoggerWith(
		common.LoggerNameScadaCore,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryConfig),
	)

	if input.ID == "" {
		input.ID = uuid.NewString()
	}

	err := s.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(input).Error

	if err == nil {
		logger.Info("Upserted device", zap.Reflect("device", input))
	}
	return err
}

func (s *SCADA) upsertTag(input *models.Tag) error {
	if err := ValidateTagConfig(input); err != nil {
		return err
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	return s.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(input).Error
}

func (s *SCADA) upsertAlarmRule(input *models.AlarmRule) error {
	if !input.Comparator.Valid() {
		return fmt.Errorf("alarm rule %s: invalid comparator %q", input.ID, input.Comparator)
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	return s.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(input).Error
}

func (s *SCADA) getDevice(deviceID string) (*models.Device, error) {
	var device models.Device
	err := s.Db.Conn.First(&device, "id = ?", deviceID).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// getDeviceTags returns the device's tags in a stable order so each
// collection tick processes them the same way.
func (s *SCADA) getDeviceTags(deviceID string) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.Db.Conn.
		Where("device_id = ?", deviceID).
		Order("name asc, id asc").
		Find(&tags).Error
	return tags, err
}

// setCollectionActive is the only config field the core writes.
func (s *SCADA) setCollectionActive(deviceID string, active bool) error {
	result := s.Db.Conn.Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("collection_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("device %s not found", deviceID)
	}
	return nil
}

type IConfigImpl struct {
	scada *SCADA
}

func (ic *IConfigImpl) UpsertProject(input *models.Project) error {
	return ic.scada.upsertProject(input)
}

func (ic *IConfigImpl) UpsertDevice(input *models.Device) error {
	return ic.scada.upsertDevice(input)
}

func (ic *IConfigImpl) UpsertTag(input *models.Tag) error {
	return ic.scada.upsertTag(input)
}

func (ic *IConfigImpl) UpsertAlarmRule(input *models.AlarmRule) error {
	return ic.scada.upsertAlarmRule(input)
}

func (ic *IConfigImpl) GetDevice(deviceID string) (*models.Device, error) {
	return ic.scada.getDevice(deviceID)
}

func (ic *IConfigImpl) GetDeviceTags(deviceID string) ([]models.Tag, error) {
	return ic.scada.getDeviceTags(deviceID)
}

func (ic *IConfigImpl) SetCollectionActive(deviceID string, active bool) error {
	return ic.scada.setCollectionActive(deviceID, active)
}

func (s *SCADA) GetIConfig() IConfig {
	return &IConfigImpl{scada: s}
}
