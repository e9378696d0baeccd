// Package main provides the CLI entrypoint for the image validation service.
// It wires subcommands (serve, check), loads configuration, and initializes
// logging and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"imagecheck/internal/config"
	"imagecheck/internal/engine"
	"imagecheck/internal/validator"
	"imagecheck/pkg/cache"
	"imagecheck/pkg/imagefetch/httpfetch"
	"imagecheck/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// newMeter creates an OpenTelemetry meter whose instruments are exported
// through the default Prometheus registry, which the API server serves at the
// configured metrics path.
func newMeter() (metric.Meter, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))

	return mp.Meter("imagecheck"), nil
}

// buildEngine assembles the validation engine stack: HTTP fetch client,
// result cache, single-URL validator and the batch facade.
func buildEngine(cfg *config.Config, meter metric.Meter) (engine.Engine, error) {
	fetcher := httpfetch.New(&http.Client{}, cfg.Validator.UserAgent)
	resultCache := cache.New(cfg.Validator.CacheTTL)

	v, err := validator.New(fetcher, resultCache, validator.NewOptions(cfg), meter)
	if err != nil {
		return nil, fmt.Errorf("could not create validator: %w", err)
	}

	eng, err := engine.New(v, resultCache, engine.NewOptions(cfg), meter)
	if err != nil {
		return nil, fmt.Errorf("could not create engine: %w", err)
	}

	return eng, nil
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use: "imagecheck",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config File Path")

	configPath := flag.String("c", "", "The config file path (empty: environment only)")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file ", err)
	}

	logger.Setup(cfg.Environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		checkCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
