package collector

import (
	"fmt"
	"net"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"webscada.dev/scada-core-service/pkg/common"
	"webscada.dev/scada-core-service/pkg/models"
)

const probeTimeout = 3 * time.Second

const (
	ReasonUnreachable   = "unreachable"
	ReasonInvalidConfig = "invalid config"
)

type ConnectionResult struct {
	Connected      bool   `json:"connected"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Reason         string `json:"reason,omitempty"`
}

// TestConnection probes the device endpoint without touching
// collection state.
func (sv *Supervisor) TestConnection(device *models.Device) *ConnectionResult {
	logger := common.GetLoggerWith(common.LoggerNameCollector,
		zap.String(common.LoggerFieldScadaCategory, common.LoggerCategoryTestConnection),
		zap.String("device_id", device.ID),
	)

	var result *ConnectionResult
	switch device.Type {
	case models.DeviceTypeSimulation:
		result = &ConnectionResult{Connected: true}
	case models.DeviceTypePolled:
		result = probeTCP(device)
	case models.DeviceTypeMessageBus:
		result = probeMQTT(device)
	default:
		result = &ConnectionResult{Connected: false, Reason: ReasonInvalidConfig}
	}

	logger.Info("Connection probe finished", zap.Reflect("result", result))
	return result
}

func probeTCP(device *models.Device) *ConnectionResult {
	if device.Address == "" || device.Port <= 0 {
		return &ConnectionResult{Connected: false, Reason: ReasonInvalidConfig}
	}

	addr := fmt.Sprintf("%s:%d", device.Address, device.Port)
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return &ConnectionResult{Connected: false, Reason: ReasonUnreachable}
	}
	conn.Close()
	return &ConnectionResult{Connected: true, ResponseTimeMs: time.Since(start).Milliseconds()}
}

func probeMQTT(device *models.Device) *ConnectionResult {
	if device.Address == "" || device.Port <= 0 {
		return &ConnectionResult{Connected: false, Reason: ReasonInvalidConfig}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", device.Address, device.Port)).
		SetClientID("scada-probe-" + uuid.NewString()[:8]).
		SetConnectTimeout(probeTimeout).
		SetConnectRetry(false).
		SetAutoReconnect(false)

	client := mqtt.NewClient(opts)
	start := time.Now()
	token := client.Connect()
	if !token.WaitTimeout(probeTimeout) || token.Error() != nil {
		return &ConnectionResult{Connected: false, Reason: ReasonUnreachable}
	}
	elapsed := time.Since(start).Milliseconds()
	client.Disconnect(250)
	return &ConnectionResult{Connected: true, ResponseTimeMs: elapsed}
}
