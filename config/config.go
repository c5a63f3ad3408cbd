// Ininicializing common application configuration
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	LFG      LFGConfig      `mapstructure:"lfg"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type ServerConfig struct {
	AppVersion   string `json:"appVersion"`
	Host         string `json:"host" validate:"required"`
	Port         string `json:"port" validate:"required"`
	Timeout      time.Duration
	Idle_timeout time.Duration
	Env          string `json:"environment"`
	Mode         string `mapstructure:"mode"`
	// ExternalURL — публичный адрес сервиса для self-ping на бесплатном хостинге
	ExternalURL string `mapstructure:"external_url"`
}

type DiscordConfig struct {
	BotToken string `mapstructure:"bot_token"`
	APIBase  string `mapstructure:"api_base"`
}

type LFGConfig struct {
	SettingsFile string `mapstructure:"settings_file"`
	// RateLimitPerMinute — максимум интеракций от одного пользователя в минуту
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
}

type WorkerConfig struct {
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
}

type RabbitMQConfig struct {
	URL       string `mapstructure:"url"`
	QueueName string `mapstructure:"queue_name"`
	Enabled   bool   `mapstructure:"enabled"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Enabled  bool   `mapstructure:"enabled"`

	// Настройки пула соединений
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
		return nil, err
	}

	// Токен бота и внешний адрес задаются окружением хостинга
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		c.Discord.BotToken = token
	}
	if url := os.Getenv("EXTERNAL_URL"); url != "" {
		c.Server.ExternalURL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.appVersion", "1.0.0")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("lfg.settings_file", "./config/settings.json")
	v.SetDefault("lfg.rate_limit_per_minute", 30)

	v.SetDefault("worker.keep_alive_interval", 14*time.Minute)

	v.SetDefault("rabbitmq.queue_name", "lfg_ticket_events")
	v.SetDefault("rabbitmq.enabled", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.enabled", false)
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
