package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ticketdesk/cmd/buildCFG"
	"ticketdesk/internal/api/api"
	"ticketdesk/internal/audit"
	"ticketdesk/internal/service"
	"ticketdesk/internal/upstream"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()
	log := zlog.Logger
	log.Info().Msg("Starting ticketdesk admin dashboard")

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "'"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)
	port := serverCfg.Port

	upstreamCfg, err := buildCFG.BuildUpstreamConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build upstream config")
	}
	apiClient := upstream.New(upstreamCfg.BaseURL, &log)

	var auditPublisher *audit.Publisher
	if rabbitCfg := buildCFG.BuildRabbitConfig(cfg, &log); rabbitCfg != nil {
		auditPublisher, err = audit.New(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
		if err != nil {
			log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
		}
		defer auditPublisher.Close()
	}

	serviceInstance := service.NewService(apiClient, &log, auditPublisher)
	app := api.NewRouters(&api.Routers{Service: serviceInstance})

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", port)
		if err := app.Run(":" + port); err != nil {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	log.Info().Msg("Shutdown complete")
}
