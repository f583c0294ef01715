package scada_test

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"go.uber.org/mock/gomock"
	"webscada.dev/scada-core-service/pkg/db"
	"webscada.dev/scada-core-service/pkg/models"
	"webscada.dev/scada-core-service/pkg/scada"
	"webscada.dev/scada-core-service/pkg/scada/mocks"
)

func GetMockSCADAWithMemorySqliteDialector(t *testing.T, useMockIMeasurement, useMockIAlarm, useMockIConfig bool) (
	*gomock.Controller,
	*scada.SCADA,
	*mocks.MockIMeasurement,
	*mocks.MockIAlarm,
	*mocks.MockIConfig,
) {
	ctrl := gomock.NewController(t)

	mockIMeasurement := mocks.NewMockIMeasurement(ctrl)
	mockIAlarm := mocks.NewMockIAlarm(ctrl)
	mockIConfig := mocks.NewMockIConfig(ctrl)
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	scadaInstance := (&scada.SCADA{Db: *dbInstance})

	measurementService := scadaInstance.GetIMeasurement()
	if useMockIMeasurement {
		measurementService = mockIMeasurement
	}

	alarmService := scadaInstance.GetIAlarm()
	if useMockIAlarm {
		alarmService = mockIAlarm
	}

	configService := scadaInstance.GetIConfig()
	if useMockIConfig {
		configService = mockIConfig
	}

	scadaInstance.WithServices(scada.ServiceOpts{
		Measurement: measurementService,
		Alarm:       alarmService,
		Config:      configService,
	})

	return ctrl, scadaInstance, mockIMeasurement, mockIAlarm, mockIConfig
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

// seedTag creates the project and device a tag needs to satisfy the
// foreign key chain, and returns the tag id.
func seedTag(t *testing.T, scadaObj *scada.SCADA) string {
	t.Helper()

	project := models.Project{Name: "test project"}
	if err := scadaObj.Config.UpsertProject(&project); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	device := models.Device{
		ProjectID: project.ID,
		Name:      "test device",
		Type:      models.DeviceTypeSimulation,
	}
	if err := scadaObj.Config.UpsertDevice(&device); err != nil {
		t.Fatalf("seed device: %v", err)
	}

	tag := models.Tag{
		DeviceID: device.ID,
		Name:     "temperature",
		Type:     models.TagTypeAnalog,
	}
	if err := scadaObj.Config.UpsertTag(&tag); err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	return tag.ID
}

// seedTagChain creates a project, device, tag and one enabled rule so
// alarm and measurement tests start from a consistent topology.
func seedTagChain(t *testing.T, scadaObj *scada.SCADA, comparator models.Comparator, threshold float64) (projectID, deviceID, tagID, ruleID string) {
	t.Helper()

	project := models.Project{Name: "test project"}
	if err := scadaObj.Config.UpsertProject(&project); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	device := models.Device{
		ProjectID: project.ID,
		Name:      "test device",
		Type:      models.DeviceTypeSimulation,
	}
	if err := scadaObj.Config.UpsertDevice(&device); err != nil {
		t.Fatalf("seed device: %v", err)
	}

	tag := models.Tag{
		DeviceID:   device.ID,
		Name:       "temperature",
		Type:       models.TagTypeAnalog,
		Simulation: true,
		Pattern:    "random",
		Min:        0,
		Max:        100,
	}
	if err := scadaObj.Config.UpsertTag(&tag); err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	rule := models.AlarmRule{
		TagID:      tag.ID,
		Name:       "high temperature",
		Comparator: comparator,
		Threshold:  threshold,
		Severity:   models.SeverityCritical,
		Enabled:    true,
	}
	if err := scadaObj.Config.UpsertAlarmRule(&rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	return project.ID, device.ID, tag.ID, rule.ID
}
