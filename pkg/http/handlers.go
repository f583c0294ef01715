package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"
	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/models"
	"webscada.dev/scada-core-service/pkg/scada"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

type ProjectRequest struct {
	Name string `json:"name"`
}

var projectRequestSchema = z.Struct(z.Shape{
	"Name": z.String().Required(),
})

func (rs *RestfulServer) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := projectRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	project := models.Project{Name: req.Name}
	if err := rs.Scada.Config.UpsertProject(&project); err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

type DeviceRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address"`
	Port    int    `json:"port"`
}

var deviceRequestSchema = z.Struct(z.Shape{
	"Name":    z.String().Required(),
	"Type":    z.String().Required(),
	"Address": z.String(),
	"Port":    z.Int(),
})

func (rs *RestfulServer) CreateDevice(c *gin.Context) {
	projectID := c.Param("project_id")

	var req DeviceRequest
	if err := deviceRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	deviceType := models.DeviceType(req.Type)
	switch deviceType {
	case models.DeviceTypePolled, models.DeviceTypeMessageBus, models.DeviceTypeSimulation:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid device type"})
		return
	}

	device := models.Device{
		ProjectID: projectID,
		Name:      req.Name,
		Type:      deviceType,
		Address:   req.Address,
		Port:      req.Port,
	}
	if err := rs.Scada.Config.UpsertDevice(&device); err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, device)
}

type TagRequest struct {
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Address          string  `json:"address"`
	UpdateIntervalMs int     `json:"update_interval_ms"`
	Simulation       bool    `json:"simulation"`
	Pattern          string  `json:"pattern"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	Noise            float64 `json:"noise"`
	StatePattern     string  `json:"state_pattern"`
	Unit             string  `json:"unit"`
	Deadband         float64 `json:"deadband"`
	ReadOnly         bool    `json:"read_only"`
	TagGroup         string  `json:"tag_group"`
}

var tagRequestSchema = z.Struct(z.Shape{
	"Name":             z.String().Required(),
	"Type":             z.String().Required(),
	"Address":          z.String(),
	"UpdateIntervalMs": z.Int(),
	"Simulation":       z.Bool(),
	"Pattern":          z.String(),
	"Min":              z.Float64(),
	"Max":              z.Float64(),
	"Noise":            z.Float64(),
	"StatePattern":     z.String(),
	"Unit":             z.String(),
	"Deadband":         z.Float64(),
	"ReadOnly":         z.Bool(),
	"TagGroup":         z.String(),
})

func (rs *RestfulServer) CreateTag(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req TagRequest
	if err := tagRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	tag := models.Tag{
		DeviceID:         deviceID,
		Name:             req.Name,
		Type:             models.TagType(req.Type),
		Address:          req.Address,
		UpdateIntervalMs: req.UpdateIntervalMs,
		Simulation:       req.Simulation,
		Pattern:          req.Pattern,
		Min:              req.Min,
		Max:              req.Max,
		Noise:            req.Noise,
		StatePattern:     req.StatePattern,
		Unit:             req.Unit,
		Deadband:         req.Deadband,
		ReadOnly:         req.ReadOnly,
		TagGroup:         req.TagGroup,
	}
	if err := scada.ValidateTagConfig(&tag); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rs.Scada.Config.UpsertTag(&tag); err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

type AlarmRuleRequest struct {
	Name       string  `json:"name"`
	Comparator string  `json:"comparator"`
	Threshold  float64 `json:"threshold"`
	Severity   string  `json:"severity"`
	Enabled    bool    `json:"enabled"`
}

var alarmRuleRequestSchema = z.Struct(z.Shape{
	"Name":       z.String().Required(),
	"Comparator": z.String().Required(),
	"Threshold":  z.Float64(),
	"Severity":   z.String().Required(),
	"Enabled":    z.Bool(),
})

func (rs *RestfulServer) CreateAlarmRule(c *gin.Context) {
	tagID := c.Param("tag_id")

	var req AlarmRuleRequest
	if err := alarmRuleRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rule := models.AlarmRule{
		TagID:      tagID,
		Name:       req.Name,
		Comparator: models.Comparator(req.Comparator),
		Threshold:  req.Threshold,
		Severity:   models.Severity(req.Severity),
		Enabled:    req.Enabled,
	}
	if !rule.Comparator.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comparator"})
		return
	}
	if err := rs.Scada.Config.UpsertAlarmRule(&rule); err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (rs *RestfulServer) StartCollection(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	result, err := rs.Supervisor.Start(deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (rs *RestfulServer) StopCollection(c *gin.Context) {
	deviceID := c.Param("device_id")

	status, err := rs.Supervisor.Stop(deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (rs *RestfulServer) CollectionStatus(c *gin.Context) {
	deviceID := c.Param("device_id")
	c.JSON(http.StatusOK, rs.Supervisor.Status(deviceID))
}

func (rs *RestfulServer) TestConnection(c *gin.Context) {
	deviceID := c.Param("device_id")

	device, err := rs.Scada.Config.GetDevice(deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, rs.Supervisor.TestConnection(device))
}

func (rs *RestfulServer) GetCurrentValue(c *gin.Context) {
	tagID := c.Param("tag_id")

	measurement, err := rs.Scada.Measurement.CurrentValue(tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no measurements for tag"})
			return
		}
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, measurement)
}

func (rs *RestfulServer) QueryMeasurements(c *gin.Context) {
	tagID := c.Param("tag_id")

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start, want RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end, want RFC3339"})
		return
	}

	query := scada.MeasurementQuery{
		Start:     start,
		End:       end,
		Direction: c.DefaultQuery("direction", "asc"),
	}
	if limit := c.Query("limit"); limit != "" {
		if query.Limit, err = strconv.Atoi(limit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if query.Offset, err = strconv.Atoi(offset); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
	}

	page, err := rs.Scada.Measurement.Query(tagID, &query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (rs *RestfulServer) GetProjectAlarms(c *gin.Context) {
	projectID := c.Param("project_id")
	activeOnly := c.Query("active") == "true"

	alarms, err := rs.Scada.Alarm.GetProjectAlarms(projectID, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, alarms)
}

type AckRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

var ackRequestSchema = z.Struct(z.Shape{
	"UserID":  z.String().Required(),
	"Message": z.String(),
})

func (rs *RestfulServer) AcknowledgeAlarm(c *gin.Context) {
	alarmID := c.Param("alarm_id")

	var req AckRequest
	if err := ackRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	result, err := rs.Scada.Alarm.Acknowledge(alarmID, req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alarm not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (rs *RestfulServer) ClearAlarm(c *gin.Context) {
	alarmID := c.Param("alarm_id")

	result, err := rs.Scada.Alarm.ClearManually(alarmID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alarm not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(deviceID, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) SubscribeWS(c *gin.Context) {
	projectID := c.Param("project_id")
	if err := broadcast.ServeWS(rs.Hub, projectID, c.Writer, c.Request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
