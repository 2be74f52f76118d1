package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	ChatAPI  ChatAPIConfig  `envPrefix:"CHAT_API_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Timeline TimelineConfig `envPrefix:"TIMELINE_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:":8080"`
	// JWTSecret signs client tokens. Empty means the gateway in front
	// of the service handles auth and identity comes from X-User-ID.
	JWTSecret string `env:"JWT_SECRET"`
	// CORSOrigin is a regexp of allowed origins. Empty disables CORS.
	CORSOrigin string `env:"CORS_ORIGIN"`
}

type DatabaseConfig struct {
	Hosts    []string `env:"HOSTS" envDefault:"localhost:27017"`
	Database string   `env:"DATABASE" envDefault:"chat_timeline"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	AuthDB   string   `env:"AUTH_DB" envDefault:"admin"`
	Direct   bool     `env:"DIRECT" envDefault:"true"`
}

type ChatAPIConfig struct {
	BaseURL string `env:"BASE_URL,required"`
	APIKey  string `env:"API_KEY"`
	Service string `env:"SERVICE" envDefault:"chat-timeline"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"true"`
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"chat-events"`
	GroupID string   `env:"GROUP_ID" envDefault:"chat-timeline"`
}

type TimelineConfig struct {
	// PageSize is how many messages are fetched per upstream page.
	PageSize int `env:"PAGE_SIZE" envDefault:"50"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
