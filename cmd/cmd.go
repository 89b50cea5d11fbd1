package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/chargehq"
	"github.com/anicoll/iotawatt-chargehq/internal/pkg/config"
	"github.com/anicoll/iotawatt-chargehq/internal/pkg/iotawatt"
	"github.com/anicoll/iotawatt-chargehq/internal/pkg/mqtt"
	"github.com/anicoll/iotawatt-chargehq/internal/pkg/publisher"
	"github.com/anicoll/iotawatt-chargehq/internal/pkg/relay"
)

// NewApp builds the cli application. Required flags are checked before action runs.
func NewApp(action cli.ActionFunc) *cli.App {
	return &cli.App{
		Name:   "iotawatt-chargehq",
		Usage:  "Update ChargeHQ from IoTaWatt",
		Action: action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ip",
				Usage:    "IP Address of IoTaWatt",
				EnvVars:  []string{"IOTAWATT_IP"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "grid",
				Usage:    "Net import from Grid (kW)",
				EnvVars:  []string{"IOTAWATT_GRID"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "production",
				Usage:    "PV production (kW)",
				EnvVars:  []string{"IOTAWATT_PRODUCTION"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "key",
				Usage:    "ChargeHQ API key",
				EnvVars:  []string{"CHARGEHQ_API_KEY"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
	}
}

func RelayCommand(ctx *cli.Context) error {
	e, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	cfg := config.New(
		ctx.String("ip"),
		ctx.String("grid"),
		ctx.String("production"),
		ctx.String("key"),
		ctx.String("log-level"),
		e,
	)

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	return run(ctx.Context, cfg, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()

	var err error
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// run performs a single relay. Only configuration problems are returned, http failures are logged.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	mirrors := publisher.New(logger)
	if cfg.MqttCfg.Enabled() {
		svc := mqtt.New(mqtt.NewClient(cfg.MqttCfg, "iotawatt-chargehq"), mqtt.Identifier(cfg.IotawattCfg))
		if err := svc.Connect(); err != nil {
			logger.Warn("unable to connect to mqtt, skipping mirror", zap.Error(err), zap.String("host", cfg.MqttCfg.Host))
		} else {
			defer svc.Disconnect()
			if err := mirrors.Register("mqtt", svc); err != nil {
				return err
			}
		}
	}

	src := iotawatt.New(cfg.IotawattCfg, iotawatt.WithLogger(logger))
	dst := chargehq.New(cfg.ChargeHQCfg, chargehq.WithLogger(logger))

	relay.New(cfg, src, dst, mirrors).WithLogger(logger).Run(ctx)
	return nil
}
