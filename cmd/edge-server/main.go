package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ekefan/afitlms/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting edge server",
		"http_addr", cfg.HTTP.Addr,
		"worker_command", cfg.Enrollment.WorkerCommand,
		"device_port", cfg.Enrollment.DevicePort,
		"enabled_services", bootstrap.GetEnabledServices(&cfg),
	)

	if err = bootstrap.ValidateServiceConfig(&cfg); err != nil {
		return err
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config: &cfg,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
}
