package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки trendmart
// Включает конфигурацию HTTP сервера, PostgreSQL, Redis, MongoDB, Kafka,
// JWT и синхронизации каталога с внешним API
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Sync     SyncConfig
	Admin    AdminConfig
	LogLevel string
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Используется для хранения категорий, товаров и кликов
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // disable/require/verify-full
}

// RedisConfig - настройки подключения к Redis
// Используется только для кеширования списка категорий
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MongoConfig - настройки подключения к MongoDB
// Используется для хранения отчетов о запусках синхронизации
type MongoConfig struct {
	URI      string
	Database string
}

// KafkaConfig - настройки Kafka для отправки событий о товарах
type KafkaConfig struct {
	Brokers []string // Список брокеров в формате host:port
	Topic   string   // Топик для событий PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
}

// JWTConfig - настройки для выпуска и проверки JWT токенов админки
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// SyncConfig - настройки синхронизации с внешним каталогом
// Одна явная retry policy вместо разрозненных веток в коде клиента
type SyncConfig struct {
	APIURL         string        // Базовый URL внешнего API (Fake Store)
	RequestTimeout time.Duration // Таймаут одного HTTP запроса
	MaxAttempts    int           // Максимум попыток на один fetch
	BackoffBase    time.Duration // База экспоненциального backoff
	Schedule       string        // Cron расписание фоновой синхронизации
}

// AdminConfig - учетная запись администратора по умолчанию
// Создается при старте если таблица admin_users пуста
type AdminConfig struct {
	Username string
	Password string
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	maxAttempts, err := strconv.Atoi(getEnv("SYNC_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_MAX_ATTEMPTS value: %w", err)
	}

	requestTimeout, err := time.ParseDuration(getEnv("SYNC_REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_REQUEST_TIMEOUT value: %w", err)
	}

	backoffBase, err := time.ParseDuration(getEnv("SYNC_BACKOFF_BASE", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_BACKOFF_BASE value: %w", err)
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "trendmart"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "trendmart"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "product_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			TTL:    jwtTTL,
		},
		Sync: SyncConfig{
			APIURL:         getEnv("SYNC_API_URL", "https://fakestoreapi.com"),
			RequestTimeout: requestTimeout,
			MaxAttempts:    maxAttempts,
			BackoffBase:    backoffBase,
			Schedule:       getEnv("SYNC_SCHEDULE", "0 */6 * * *"), // Каждые 6 часов
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", "admin"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
