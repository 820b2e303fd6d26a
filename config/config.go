package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration.
type Config struct {
	TelegramBotToken string
	TelegramChatID   string

	WaterLevelThreshold  float64 // same unit as water_level readings
	NotificationCooldown int     // seconds between two dispatched alerts
	NotificationTimeout  int     // seconds before an outbound alert call is abandoned

	CSVDirectory string

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	DeviceAuthToken string
	AllowedOrigins  string

	Host  string
	Port  string
	Debug bool
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() Config {
	//load env variables
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	cfg := Config{
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:       os.Getenv("TELEGRAM_CHAT_ID"),
		WaterLevelThreshold:  envFloat("WATER_LEVEL_THRESHOLD", 20),
		NotificationCooldown: envInt("NOTIFICATION_COOLDOWN", 300),
		NotificationTimeout:  envInt("NOTIFICATION_TIMEOUT", 10),
		CSVDirectory:         envString("CSV_DIRECTORY", "data"),
		InfluxDBURL:          os.Getenv("INFLUXDB_URL"),
		InfluxDBToken:        os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:          os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket:       os.Getenv("INFLUXDB_BUCKET"),
		DeviceAuthToken:      os.Getenv("DEVICE_AUTH_TOKEN"),
		AllowedOrigins:       envString("ALLOWED_ORIGINS", "*"),
		Host:                 envString("HOST", "0.0.0.0"),
		Port:                 envString("PORT", "5000"),
		Debug:                envBool("DEBUG", true),
	}

	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
		log.Println("Telegram credentials are not set, water level alerts are disabled")
	}

	return cfg
}

// InfluxEnabled reports whether the optional InfluxDB mirror is configured.
func (c Config) InfluxEnabled() bool {
	return c.InfluxDBURL != "" && c.InfluxDBToken != "" && c.InfluxDBOrg != "" && c.InfluxDBBucket != ""
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value %q for %s, using default %d", v, key, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Invalid value %q for %s, using default %g", v, key, fallback)
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid value %q for %s, using default %t", v, key, fallback)
		return fallback
	}
	return b
}
