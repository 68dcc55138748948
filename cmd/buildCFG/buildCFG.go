package buildCFG

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
)

type ServerConfig struct {
	Port string
}

type UpstreamConfig struct {
	BaseURL string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

// BuildUpstreamConfig reads the ticketing service address. There is no
// sensible default: the dashboard is useless without its backend.
func BuildUpstreamConfig(cfg *config.Config, log *zerolog.Logger) (UpstreamConfig, error) {
	baseURL := cfg.GetString("upstream.base_url")
	if baseURL == "" {
		return UpstreamConfig{}, errors.New("upstream.base_url is required")
	}
	log.Info().Str("base_url", baseURL).Msg("upstream ticketing service configured")
	return UpstreamConfig{BaseURL: baseURL}, nil
}

// BuildRabbitConfig returns nil when no RabbitMQ URL is configured, which
// disables audit publishing entirely.
func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) *RabbitConfig {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		log.Info().Msg("rabbit.url not set, audit publishing disabled")
		return nil
	}
	return &RabbitConfig{
		Url:      url,
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
}
