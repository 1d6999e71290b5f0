package server

import (
	"sensegrid-server/cache"
	"sensegrid-server/confs"
	"sensegrid-server/db"
	"sensegrid-server/handlers"
	httpHandler "sensegrid-server/handlers/http"
	"sensegrid-server/mqttclient"
	"sensegrid-server/repositories"
	"sensegrid-server/services"
	"sensegrid-server/usecases"
	"sensegrid-server/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	app  *gin.Engine
	db   db.Database
	mqtt *mqttclient.Client
}

func NewServer(database db.Database) *Server {
	return &Server{
		app: gin.Default(),
		db:  database,
	}
}

func (s *Server) Start() {
	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true // Allow all origins for development
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	// Setup healthcheck route
	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "OK",
		})
	})

	// Initialize repositories
	deviceRepo := repositories.NewDevicePgRepository(s.db)
	readingRepo := repositories.NewSensorReadingPgRepository(s.db)

	// Shared in-memory state
	latest := cache.NewLatestCache()
	manager := ws.NewManager()

	// Core services
	lifecycle := services.NewLifecycleService(s.db, deviceRepo)
	ingest := services.NewIngestService(s.db, deviceRepo, readingRepo, latest)
	ingest.AttachFeed(manager)
	quota := services.NewQuotaService(readingRepo)
	retention := services.NewRetentionService(readingRepo)
	aggregate := services.NewAggregateService(deviceRepo, readingRepo)

	// MQTT subscriber: callbacks enqueue, one consumer loop dispatches
	dispatcher := services.NewDispatcher(lifecycle, ingest)
	s.mqtt = mqttclient.New(confs.MQTTBroker(), confs.MQTTPort(), confs.MQTTTopicPrefix(), confs.MQTTClientID(), dispatcher)
	if err := s.mqtt.Start(); err != nil {
		// The HTTP surface still works without the subscriber; devices
		// just won't stream until the broker comes back.
		gin.DefaultErrorWriter.Write([]byte("mqtt: " + err.Error() + "\n"))
	}

	// Use cases and handlers
	deviceUseCase := usecases.NewDeviceUseCase(deviceRepo, readingRepo, latest)
	deviceHandler := httpHandler.NewDeviceHandler(deviceUseCase, lifecycle)
	sensorHandler := httpHandler.NewSensorHandler(ingest, aggregate)
	quotaHandler := httpHandler.NewQuotaHandler(quota)
	retentionHandler := httpHandler.NewRetentionHandler(retention)
	loginHandler := httpHandler.NewLoginHandler(s.db.GetDB())
	cacheHandler := httpHandler.NewCacheHandler(latest)
	publishHandler := httpHandler.NewPublishHandler(s.mqtt, confs.MQTTTopicPrefix())
	wsHandler := handlers.NewWSHandler(manager)

	// Setup API routes
	api := s.app.Group("/api/v1")
	{
		// Device routes
		devices := api.Group("/devices")
		{
			devices.POST("", deviceHandler.CreateDevice)
			devices.GET("", deviceHandler.GetAllDevices)
			devices.GET("/:device_id", deviceHandler.GetDevice)
			devices.PUT("/:device_id", deviceHandler.UpdateDevice)
			devices.PUT("/:device_id/status", deviceHandler.UpdateDeviceStatus)
			devices.DELETE("/:device_id", deviceHandler.DeleteDevice)
			devices.POST("/:device_id/command", publishHandler.SendCommand)

			// Sensor routes
			devices.POST("/:device_id/sensors", sensorHandler.CreateReading)
			devices.GET("/:device_id/sensors/:sensor_type/latest", sensorHandler.GetLatestReading)
			devices.GET("/:device_id/sensors/:sensor_type/stats", sensorHandler.GetStats)
			devices.GET("/:device_id/sensors/:sensor_type/timeseries", sensorHandler.GetTimeSeries)
		}

		// Stored readings are immutable; read-only access by id
		api.GET("/readings/:id", deviceHandler.GetReading)

		// Quota routes
		quotaRoutes := api.Group("/quota")
		{
			quotaRoutes.GET("/stats", quotaHandler.GetStats)
			quotaRoutes.GET("/check-date-range", quotaHandler.CheckDateRange)
		}

		// Cache routes
		cacheRoutes := api.Group("/cache")
		{
			cacheRoutes.GET("/stats", cacheHandler.GetCacheStats)
		}

		// Retention routes
		retentionRoutes := api.Group("/retention")
		{
			retentionRoutes.GET("/stats", retentionHandler.GetStats)
			retentionRoutes.POST("/cleanup", retentionHandler.Cleanup)
		}

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginHandler.Login)
		}

		// Dashboard-related HTTP endpoints
		api.GET("/dashboard/connections", wsHandler.GetConnectedClients)
	}

	s.app.GET("/ws", wsHandler.HandleDashboardWS)

	if err := s.app.Run(confs.ListenAddr()); err != nil {
		s.mqtt.Stop()
		panic(err)
	}
}
