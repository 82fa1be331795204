package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/alert"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/api"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/capture"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/config"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/geo"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/log"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/processor"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start capturing in the foreground",
	Long: `Start the capture session in the foreground.

Examples:
  netdash start                      # Start with ./config.yaml
  netdash start -c /etc/netdash.yml  # Start with an explicit config file

Stop with SIGINT or SIGTERM; already captured records are kept in memory
until the process exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := log.Init(cfg.Log); err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func run(cfg *config.Config) error {
	logger := log.GetLogger()

	source, err := capture.Open(cfg.Capture)
	if err != nil {
		return err
	}
	defer source.Close()

	locator, err := geo.NewLocator(cfg.Geo)
	if err != nil {
		return err
	}

	engine := alert.NewEngine()
	for _, spec := range cfg.Alerts.Rules {
		if err := engine.RegisterSpec(spec); err != nil {
			return err
		}
	}
	if cfg.Alerts.Kafka.Enabled {
		sink, err := alert.NewKafkaSink(cfg.Alerts.Kafka)
		if err != nil {
			return err
		}
		defer sink.Close()
		engine.AddSink(sink)
	}

	session := processor.NewSession(source, locator, engine, cfg.Processor)
	logger.WithFields(map[string]interface{}{
		"session":   session.ID(),
		"interface": cfg.Capture.Interface,
	}).Info("starting capture")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg.API.Listen, session)
		if err := server.Start(); err != nil {
			return err
		}
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- session.Run(ctx)
	}()

	select {
	case err = <-runErr:
		if err != nil {
			logger.WithError(err).Error("capture terminated")
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Closing the source unblocks a pending read so the loop can
		// observe cancellation.
		source.Close()
		select {
		case <-runErr:
		case <-time.After(5 * time.Second):
			logger.Warn("capture loop did not stop in time")
		}
	}

	if server != nil {
		if stopErr := server.Stop(context.Background()); stopErr != nil {
			logger.WithError(stopErr).Warn("failed to stop API server")
		}
	}
	return err
}
