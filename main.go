// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"AquaLog.monitor/config"
	"AquaLog.monitor/controllers"
	"AquaLog.monitor/dao"
	"AquaLog.monitor/routes"
	"AquaLog.monitor/services"
	"AquaLog.monitor/ws"
)

const (
	alertWorkers   = 2
	alertQueueSize = 16
)

func main() {
	// Load configuration (reads .env if present)
	cfg := config.LoadConfig()

	// Storage: daily CSV logs, plus the optional InfluxDB mirror
	csvDao := dao.NewCSVDao(cfg.CSVDirectory)

	// Alerting: limiter guards the cooldown, dispatcher runs the sends
	limiter := services.NewAlertLimiter(cfg.WaterLevelThreshold, time.Duration(cfg.NotificationCooldown)*time.Second)
	notifier := services.NewTelegramNotifier(
		cfg.TelegramBotToken,
		cfg.TelegramChatID,
		cfg.WaterLevelThreshold,
		time.Duration(cfg.NotificationTimeout)*time.Second,
	)
	dispatcher := services.NewAlertDispatcher(notifier, limiter, alertWorkers, alertQueueSize)
	defer dispatcher.Stop()

	// Ingestion service and live broadcast
	service := services.NewMeasurementService(csvDao, limiter, dispatcher)
	service.SetDebug(cfg.Debug)

	hub := ws.NewHub(service.Latest)
	go hub.Run()
	service.SetBroadcaster(hub)

	if cfg.InfluxEnabled() {
		influxDao := dao.NewInfluxDao(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket)
		if err := influxDao.Ping(context.Background()); err != nil {
			log.Fatal("Error initializing InfluxDB mirror:", err)
		}
		service.SetMirror(influxDao)
	}

	// Set up routes
	controller := controllers.NewMeasurementController(service)
	router := routes.SetupRouter(controller, hub, cfg.DeviceAuthToken)

	// CORS setup
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Device-Token"},
		AllowCredentials: false,
	})
	handler := c.Handler(router)

	// Start the HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	log.Println("Starting Measurement API and Web App...")
	log.Printf("API endpoint: http://%s/measurement", addr)
	log.Printf("Web interface: http://%s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal("Error starting server:", err)
	}
}
