package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"webscada.dev/scada-core-service/pkg/broadcast"
	"webscada.dev/scada-core-service/pkg/collector"
	"webscada.dev/scada-core-service/pkg/scada"
)

type RestfulServer struct {
	Server           *gin.Engine
	Scada            *scada.SCADA
	Supervisor       *collector.Supervisor
	Hub              *broadcast.Hub
	RateLimiterStore *scada.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(deviceID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(deviceID)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(deviceID string) bool {
	limiter := rs.GetLimiter(deviceID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(deviceID string, deviceRate float64, deviceBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(deviceID, rate.Limit(deviceRate), deviceBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)
	rs.Server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	projects := rs.Server.Group("/projects")
	{
		projects.POST("", rs.CreateProject)
		projects.POST("/:project_id/devices", rs.CreateDevice)
		projects.GET("/:project_id/alarms", rs.GetProjectAlarms)
	}

	devices := rs.Server.Group("/devices/:device_id")
	{
		devices.POST("/tags", rs.CreateTag)
		devices.POST("/collection/start", rs.StartCollection)
		devices.POST("/collection/stop", rs.StopCollection)
		devices.GET("/collection/status", rs.CollectionStatus)
		devices.POST("/collection/test", rs.TestConnection)
		devices.POST("/limiter", rs.PostLimiter)
	}

	tags := rs.Server.Group("/tags/:tag_id")
	{
		tags.POST("/rules", rs.CreateAlarmRule)
		tags.GET("/current", rs.GetCurrentValue)
		tags.GET("/measurements", rs.QueryMeasurements)
	}

	alarms := rs.Server.Group("/alarms/:alarm_id")
	{
		alarms.POST("/ack", rs.AcknowledgeAlarm)
		alarms.POST("/clear", rs.ClearAlarm)
	}

	rs.Server.GET("/ws/:project_id", rs.SubscribeWS)
}
