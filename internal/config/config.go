package config

import (
	"os"
	"strconv"
)

type TreeServiceConfig struct {
	Port        string
	APIKey      string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	MinioCfg    MinioConfig
	RabbitMQCfg RabbitMQConfig
	KoboCfg     KoboConfig
	WorkerCfg   WorkerConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	MinioURL         string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioLocation    string
	MinioSecure      string
	MinioResourceURL string
}

type RabbitMQConfig struct {
	Host     string
	Username string
	Password string
	Port     string
}

type KoboConfig struct {
	APIURL            string
	APIToken          string
	PlantingAssetID   string
	MonitoringAssetID string
	FormBaseURL       string
}

type WorkerConfig struct {
	PollIntervalMinutes int
	LookbackHours       int
	NumWorkers          int
}

func New() *TreeServiceConfig {
	return &TreeServiceConfig{
		Port:   getEnvOrDefault("PORT", "8084"),
		APIKey: getEnvOrDefault("API_KEY", ""),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "tree_service"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		MinioCfg: MinioConfig{
			MinioURL:         getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey:   getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey:   getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:    getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:      getEnvOrDefault("MINIO_SECURE", "false"),
			MinioResourceURL: getEnvOrDefault("MINIO_RESOURCE_URL", "http://localhost:9407/"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Host:     getEnvOrDefault("RABBITMQ_HOST", "rabbitmq"),
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		KoboCfg: KoboConfig{
			APIURL:            getEnvOrDefault("KOBO_API_URL", "https://kf.kobotoolbox.org/api/v2"),
			APIToken:          getEnvOrDefault("KOBO_API_TOKEN", ""),
			PlantingAssetID:   getEnvOrDefault("KOBO_PLANTING_ASSET_ID", ""),
			MonitoringAssetID: getEnvOrDefault("KOBO_MONITORING_ASSET_ID", ""),
			FormBaseURL:       getEnvOrDefault("KOBO_FORM_BASE_URL", "https://ee.kobotoolbox.org/x"),
		},
		WorkerCfg: WorkerConfig{
			PollIntervalMinutes: getEnvIntOrDefault("KOBO_POLL_INTERVAL_MINUTES", 15),
			LookbackHours:       getEnvIntOrDefault("KOBO_LOOKBACK_HOURS", 24),
			NumWorkers:          getEnvIntOrDefault("INGEST_NUM_WORKERS", 4),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
