package confs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadConfig loads environment variables from a .env file if present
// and validates essential settings when needed.
func LoadConfig() error {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		// Only log when the file truly doesn't exist; not an error for runtime
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Printf("warning: %s=%q is not an integer, using %d", key, os.Getenv(key), fallback)
	}
	return fallback
}

// MQTTBroker returns the broker host.
func MQTTBroker() string { return getenv("MQTT_BROKER", "broker.hivemq.com") }

// MQTTPort returns the broker port.
func MQTTPort() int { return getenvInt("MQTT_PORT", 1883) }

// MQTTTopicPrefix returns the topic prefix devices publish under.
func MQTTTopicPrefix() string { return getenv("MQTT_TOPIC_PREFIX", "sensegrid") }

// MQTTClientID returns the subscriber client id.
func MQTTClientID() string { return getenv("MQTT_CLIENT_ID", "sensegrid-server") }

// ListenAddr returns the HTTP listen address.
func ListenAddr() string { return getenv("LISTEN_ADDR", "0.0.0.0:3536") }
