package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Configuration struct {
	Logs             LogsSettings     `mapstructure:"logs"`
	App              Application      `mapstructure:"app"`
	Database         Database         `mapstructure:"database"`
	Queue            QueueConfig      `mapstructure:"queue"`
	Redis            Redis            `mapstructure:"redis"`
	Security         SecuritySettings `mapstructure:"security"`
	Server           ServerSettings   `mapstructure:"server"`
	Consumer         ConsumerConfig   `mapstructure:"consumer"`
	Cache            CacheConfig      `mapstructure:"cache"`
	Search           SearchConfig     `mapstructure:"search"`
	ExternalServices ExternalServices `mapstructure:"external-services"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	Path             string `mapstructure:"log-path"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name     string `mapstructure:"name"`
	Timeout  int    `mapstructure:"timeout"`
	Version  string `mapstructure:"version"`
	HostLink string `mapstructure:"host-link"`
}

type Database struct {
	Url                   string `mapstructure:"url"`
	DbName                string `mapstructure:"dbname"`
	WorkspaceCollection   string `mapstructure:"workspace-collection"`
	InvitationCollection  string `mapstructure:"invitation-collection"`
	ActivityLogCollection string `mapstructure:"activity-log-collection"`
	Timeout               int    `mapstructure:"timeout"`
}

type SearchConfig struct {
	MinQueryLimit int `mapstructure:"min-query-limit"`
	MaxQueryLimit int `mapstructure:"max-query-limit"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Url              string `mapstructure:"url"`
	Exchange         string `mapstructure:"exchange"`
	ExchangeType     string `mapstructure:"exchange-type"`
	ActivityLogQueue string `mapstructure:"activity-log-queue"`
	EmailQueue       string `mapstructure:"email-queue"`
	EmailRoutingKey  string `mapstructure:"email-routing-key"`
	PrefetchCount    int    `mapstructure:"prefetch-count"`
	ReconnectDelay   int    `mapstructure:"reconnect-delay"`
	Timeout          int    `mapstructure:"timeout"`
	PrefetchSize     int    `mapstructure:"prefetch-size"`
	Global           bool   `mapstructure:"global"`
	Durable          bool   `mapstructure:"durable"`
	AutoDelete       bool   `mapstructure:"auto-delete"`
	Internal         bool   `mapstructure:"internal"`
	NoWait           bool   `mapstructure:"no-wait"`
	Exclusive        bool   `mapstructure:"exclusive"`
	Consumer         string `mapstructure:"consumer"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type SecuritySettings struct {
	JwtKey string `mapstructure:"jwt-key"`
}

type ServerSettings struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read-timeout"`
	WriteTimeout int    `mapstructure:"write-timeout"`
	IdleTimeout  int    `mapstructure:"idle-timeout"`
}

type ConsumerConfig struct {
	BatchSize         int `mapstructure:"batch-size"`
	PollingIntervalMs int `mapstructure:"polling-interval-ms"`
	MaxWaitTimeMs     int `mapstructure:"max-wait-time-ms"`
}

type CacheConfig struct {
	ContextExpirationHours       int `mapstructure:"context-expiration-hours"`
	ContextRefreshThresholdHours int `mapstructure:"context-refresh-threshold-hours"`
}

type ExternalServices struct {
	IdentityService IdentityServiceConfig `mapstructure:"identity-service"`
}

type IdentityServiceConfig struct {
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"`
}

func Load() *Configuration {
	cfg := read()
	logrus.Info("Configuration loaded")

	// Override with environment variables
	mongoUri := os.Getenv("MONGODB_URL")
	if mongoUri != "" {
		cfg.Database.Url = mongoUri
	}

	dbName := os.Getenv("DB_NAME")
	if dbName != "" {
		cfg.Database.DbName = dbName
	}

	redisUrl := os.Getenv("REDIS_URL")
	if redisUrl != "" {
		cfg.Redis.Url = redisUrl
	}

	redisDB := os.Getenv("REDIS_DB")
	if redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.Db = db
		}
	}

	rabbitmqUrl := os.Getenv("RABBITMQ_URL")
	if rabbitmqUrl != "" {
		cfg.Queue.RabbitMQ.Url = rabbitmqUrl
	}

	identityUrl := os.Getenv("IDENTITY_SERVICE_URL")
	if identityUrl != "" {
		cfg.ExternalServices.IdentityService.URL = identityUrl
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey != "" {
		cfg.Security.JwtKey = jwtKey
	}

	applyDefaults(cfg)

	return cfg
}

func applyDefaults(cfg *Configuration) {
	if cfg.Consumer.BatchSize <= 0 {
		cfg.Consumer.BatchSize = 100
	}
	if cfg.Consumer.PollingIntervalMs <= 0 {
		cfg.Consumer.PollingIntervalMs = 1000
	}
	if cfg.Consumer.MaxWaitTimeMs <= 0 {
		cfg.Consumer.MaxWaitTimeMs = 5000
	}
	if cfg.Cache.ContextExpirationHours <= 0 {
		cfg.Cache.ContextExpirationHours = 24
	}
	if cfg.Cache.ContextRefreshThresholdHours <= 0 {
		cfg.Cache.ContextRefreshThresholdHours = 6
	}
	if cfg.Queue.RabbitMQ.ActivityLogQueue == "" {
		cfg.Queue.RabbitMQ.ActivityLogQueue = "activity_log_queue"
	}
}

func read() *Configuration {
	viper.SetConfigFile("src/internal/config/cfg.yml")
	viper.AutomaticEnv()
	viper.SetConfigType("yml")

	var config Configuration

	err := viper.ReadInConfig()
	if err != nil {
		logrus.Panicf("Error reading config file, %s", err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		logrus.Panicf("Error unmarshalling config file, %s", err)
	}

	return &config
}
