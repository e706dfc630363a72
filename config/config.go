package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Config struct {
	APIBaseURL         string
	ImagesBaseURL      string
	DefaultNationality string
	HTTPTimeout        time.Duration
	ListenAddr         string
	RedisHost          string
	RedisPort          string
	SessionTTL         time.Duration
	KafkaBroker        string
	FeedbackTopic      string
	ShareBaseURL       string
	LogLevel           string
	LogFormat          string
}

// Load reads the process environment, optionally seeded from a .env file in
// the working directory.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:4000/v1"), "/"),
		ImagesBaseURL:      strings.TrimRight(getEnv("IMAGES_BASE_URL", "http://localhost:4000"), "/"),
		DefaultNationality: getEnv("DEFAULT_NATIONALITY", "France"),
		HTTPTimeout:        getDuration("HTTP_TIMEOUT", 15*time.Second),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8084"),
		RedisHost:          os.Getenv("REDIS_HOST"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		SessionTTL:         getDuration("SESSION_TTL", 24*time.Hour),
		KafkaBroker:        os.Getenv("KAFKA_BROKER"),
		FeedbackTopic:      getEnv("FEEDBACK_TOPIC", "dish-feedback"),
		ShareBaseURL:       strings.TrimRight(getEnv("SHARE_BASE_URL", "http://localhost:8084"), "/"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
}

func (c Config) RedisEnabled() bool { return c.RedisHost != "" }

func (c Config) KafkaEnabled() bool { return c.KafkaBroker != "" }

func NewLogger(cfg Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func MustInitRedis(cfg Config, log logrus.FieldLogger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	return client
}

// NewKafkaWriter partitions by message key, so events sharing a key keep
// their order.
func NewKafkaWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.FeedbackTopic,
		Balancer: &kafka.Hash{},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
