package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type CommissionConfig struct {
	Env               string `yaml:"env" env:"ENV" env-default:"local"`
	BootstrapAdminID  string `yaml:"bootstrap_admin_id" env:"BOOTSTRAP_ADMIN_ID"`
	HTTPServer        `yaml:"http_server"`
	GRPCServer        `yaml:"grpc_server"`
	CommissionDB      `yaml:"commission_db"`
	Storage           `yaml:"storage"`
	LogConfig         `yaml:"log_config"`
	KafkaService      `yaml:"kafka-service"`
	AttachmentService `yaml:"attachment-service"`
	RateLimit         `yaml:"rate_limit"`
	Graph             `yaml:"graph"`
	Salary            `yaml:"salary"`
	Eligibility       `yaml:"eligibility"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

// GRPCServer - только health-check для проб
type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

type CommissionDB struct {
	Dsn            string `yaml:"dsn" env:"COMMISSION_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"COMMISSION_MIGRATIONS_PATH" env-default:"migrations"`
}

// Storage.Driver: postgres | memory
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

type LogConfig struct {
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat  string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput  string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"30"`
}

type KafkaService struct {
	Host               string `yaml:"host" env:"KAFKA_HOST"`
	Port               string `yaml:"port" env:"KAFKA_PORT"`
	RequestEventsTopic string `yaml:"request_events_topic" env-default:"commission-request-events"`
	AttributionTopic   string `yaml:"attribution_topic" env-default:"commission-attribution-events"`
	RevenueTopic       string `yaml:"revenue_topic" env-default:"revenue-events"`
	GroupID            string `yaml:"group_id" env-default:"commission-service"`
}

func (k KafkaService) Enabled() bool {
	return k.Host != ""
}

func (k KafkaService) Addr() string {
	return k.Host + ":" + k.Port
}

type AttachmentService struct {
	BaseURL string        `yaml:"base_url" env:"ATTACHMENT_SERVICE_URL"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// RateLimit - ограничение подачи заявок на пользователя
type RateLimit struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute" env-default:"30"`
	Burst             int     `yaml:"burst" env-default:"5"`
}

type Graph struct {
	CacheSize       int           `yaml:"cache_size" env-default:"4096"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"1m"`
}

// Salary.Schedule - cron-выражение ежедневного начисления оклада
type Salary struct {
	Schedule string `yaml:"schedule" env:"SALARY_SCHEDULE" env-default:"5 0 * * *"`
}

type Eligibility struct {
	Timezone string           `yaml:"timezone" env:"ELIGIBILITY_TIMEZONE" env-default:"UTC"`
	Policies []PolicyOverride `yaml:"policies"`
}

// PolicyOverride заменяет роли и/или окно подачи встроенной политики категории
type PolicyOverride struct {
	Category   string   `yaml:"category"`
	Roles      []string `yaml:"roles"`
	Rule       string   `yaml:"rule"`
	DayOfMonth int      `yaml:"day_of_month"`
	Weekday    string   `yaml:"weekday"`
	Days       int      `yaml:"days"`
}

func MustLoad() *CommissionConfig {
	// .env опционален, переменные окружения имеют приоритет
	_ = godotenv.Load()

	configPath := os.Getenv("COMMISSION_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("COMMISSION_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg CommissionConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
