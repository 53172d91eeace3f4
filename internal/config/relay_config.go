package config

// RelayConfig holds configuration for the outbox relay service.
// This is a minimal config that only includes what the relay needs.
type RelayConfig struct {
	DatabaseURL    string
	RabbitMQURL    string
	DonorQueueName string
	HealthAddr     string
	LogLevel       string
	LogFormat      string
}

func LoadRelayConfig() *RelayConfig {
	loadDotEnv()

	return &RelayConfig{
		DatabaseURL:    mustEnv("DB_CONNECTION_STRING"),
		RabbitMQURL:    mustEnv("RABBITMQ_URL"),
		DonorQueueName: getEnv("DONOR_QUEUE_NAME", "donor.triaged"),
		HealthAddr:     getEnv("RELAY_HEALTH_ADDR", ":8090"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}
